package dto

import (
	"errors"
	"mime/multipart"
)

var (
	ErrNoFiles = errors.New("at least one payslip file is required")
)

// PayslipUploadRequest represents the incoming multipart request
type PayslipUploadRequest struct {
	Files    []*multipart.FileHeader `form:"files[]" binding:"required"`
	Password string                  `form:"password"`
}

// Validate performs basic validation on the request
func (r *PayslipUploadRequest) Validate() error {
	if len(r.Files) == 0 {
		return ErrNoFiles
	}
	return nil
}
