package services

import (
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
)

func proofHeader(size int64, contentType string) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: "preuve.png",
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
	}
}

func TestValidateProof(t *testing.T) {
	assert.NoError(t, ValidateProof(proofHeader(1024, "image/png")))
	assert.NoError(t, ValidateProof(proofHeader(MaxProofSize, "image/jpeg")))

	assert.ErrorIs(t, ValidateProof(proofHeader(MaxProofSize+1, "image/png")), ErrProofTooLarge)
	assert.ErrorIs(t, ValidateProof(proofHeader(1024, "application/pdf")), ErrInvalidProofType)
	assert.ErrorIs(t, ValidateProof(proofHeader(1024, "text/html")), ErrInvalidProofType)
	assert.ErrorIs(t, ValidateProof(proofHeader(1024, "")), ErrInvalidProofType)
}
