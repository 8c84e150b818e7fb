// Package pdf renders membership documents.
package pdf

import (
	"context"
	"io"
	"time"
)

type CertificateMember struct {
	Name        string
	DateOfBirth time.Time
	IsPrimary   bool
}

type CertificateData struct {
	MembershipNumber int64
	HolderName       string
	Type             string
	CoverageType     string
	DurationType     string
	StartDate        time.Time
	EndDate          time.Time
	Members          []CertificateMember
}

type Provider interface {
	GenerateCertificate(ctx context.Context, data CertificateData) (io.Reader, error)
}
