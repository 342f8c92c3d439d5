package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"floralys_back_end/internal/config"
)

// Taille maximale d'une preuve de paiement.
const MaxProofSize = 5 << 20 // 5 Mo

// ProofStorage stocke les preuves de paiement (captures de virement,
// reçus mobiles…) dans MinIO.
type ProofStorage struct {
	client    *minio.Client
	bucket    string
	endpoint  string
	publicURL string
}

func NewProofStorage(client *minio.Client, cfg config.Config) *ProofStorage {
	return &ProofStorage{
		client:    client,
		bucket:    cfg.MinioBucket,
		endpoint:  cfg.MinioEndpoint,
		publicURL: cfg.MinioPublicURL,
	}
}

// ValidateProof refuse tout fichier qui n'est pas une image de 5 Mo maximum,
// AVANT le moindre upload ou écriture en base.
func ValidateProof(file *multipart.FileHeader) error {
	if file.Size > MaxProofSize {
		return ErrProofTooLarge
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return ErrInvalidProofType
	}
	return nil
}

// Upload pousse la preuve vers MinIO et renvoie son URL publique.
func (s *ProofStorage) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("MinIO non initialisé")
	}
	if err := ValidateProof(file); err != nil {
		return "", err
	}

	f, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("ouverture fichier: %w", err)
	}
	defer f.Close()

	objectName := fmt.Sprintf("payments/%s%s", uuid.New().String(), filepath.Ext(file.Filename))

	_, err = s.client.PutObject(ctx, s.bucket, objectName, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		return "", fmt.Errorf("upload MinIO: %w", err)
	}

	base := s.publicURL
	if base == "" {
		base = "http://" + s.endpoint
	}
	return fmt.Sprintf("%s/%s/%s", base, s.bucket, objectName), nil
}
