package repository

import (
	"context"
	"database/sql"
	"fmt"

	"floralys_back_end/internal/models"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	// HasOpenPayment indique si la commande a déjà un paiement non échoué.
	HasOpenPayment(ctx context.Context, orderID string) (bool, error)
	UpdateVerificationTx(ctx context.Context, tx *sql.Tx, p *models.Payment) error
	ListPending(ctx context.Context, page, limit int) ([]models.Payment, int, error)
	FindMethodByID(ctx context.Context, id string) (*models.PaymentMethod, error)
	ListActiveMethods(ctx context.Context) ([]models.PaymentMethod, error)
}

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, order_id, payment_method_id, amount, status, reference_number,
	payment_details, proof_image_url, verified_by, verified_at, verification_notes, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	p := &models.Payment{}
	var details []byte
	var proofURL, verifiedBy, notes sql.NullString
	var verifiedAt sql.NullTime

	err := row.Scan(
		&p.ID, &p.OrderID, &p.PaymentMethodID, &p.Amount, &p.Status, &p.ReferenceNumber,
		&details, &proofURL, &verifiedBy, &verifiedAt, &notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if details != nil {
		p.PaymentDetails = details
	}
	if proofURL.Valid {
		p.ProofImageURL = &proofURL.String
	}
	if verifiedBy.Valid {
		p.VerifiedBy = &verifiedBy.String
	}
	if verifiedAt.Valid {
		p.VerifiedAt = &verifiedAt.Time
	}
	if notes.Valid {
		p.VerificationNotes = &notes.String
	}
	return p, nil
}

func (r *paymentRepository) Create(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (order_id, payment_method_id, amount, status, reference_number, payment_details, proof_image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	var details any
	if len(p.PaymentDetails) > 0 {
		details = []byte(p.PaymentDetails)
	}

	err := r.db.QueryRowContext(ctx, query,
		p.OrderID, p.PaymentMethodID, p.Amount, p.Status, p.ReferenceNumber, details, p.ProofImageURL,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insertion paiement: %w", err)
	}
	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("recherche paiement: %w", err)
	}
	return p, nil
}

func (r *paymentRepository) HasOpenPayment(ctx context.Context, orderID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM payments WHERE order_id = $1 AND status <> 'failed')`, orderID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("vérification paiement ouvert: %w", err)
	}
	return exists, nil
}

// UpdateVerificationTx écrit la décision de l'admin. Le WHERE status = 'pending'
// protège contre deux vérifications concurrentes du même paiement.
func (r *paymentRepository) UpdateVerificationTx(ctx context.Context, tx *sql.Tx, p *models.Payment) error {
	query := `
		UPDATE payments
		SET status = $1, verified_by = $2, verified_at = $3, verification_notes = $4, updated_at = NOW()
		WHERE id = $5 AND status = 'pending'
	`

	res, err := tx.ExecContext(ctx, query,
		p.Status, p.VerifiedBy, p.VerifiedAt, p.VerificationNotes, p.ID)
	if err != nil {
		return fmt.Errorf("mise à jour paiement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *paymentRepository) ListPending(ctx context.Context, page, limit int) ([]models.Payment, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE status = 'pending'`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("comptage paiements: %w", err)
	}

	query := `SELECT ` + paymentColumns + `
		FROM payments WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("liste paiements: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("lecture paiement: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("lecture paiements: %w", err)
	}

	return payments, total, nil
}

func (r *paymentRepository) FindMethodByID(ctx context.Context, id string) (*models.PaymentMethod, error) {
	m := &models.PaymentMethod{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, is_active FROM payment_methods WHERE id = $1`, id,
	).Scan(&m.ID, &m.Name, &m.Type, &m.IsActive)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("recherche moyen de paiement: %w", err)
	}
	return m, nil
}

func (r *paymentRepository) ListActiveMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, is_active FROM payment_methods WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("liste moyens de paiement: %w", err)
	}
	defer rows.Close()

	var methods []models.PaymentMethod
	for rows.Next() {
		var m models.PaymentMethod
		if err := rows.Scan(&m.ID, &m.Name, &m.Type, &m.IsActive); err != nil {
			return nil, fmt.Errorf("lecture moyen de paiement: %w", err)
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}
