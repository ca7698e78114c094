package service

import (
	"context"
	"fmt"

	"github.com/mkstudio/studio-api/internal/domain"
)

// Issuer block printed at the top of every invoice.
var studioLines = []string{
	"MK Studio",
	"Coaching sportif & Pilates",
	"4 rue des Tanneurs, 68000 Colmar",
	"SIRET 912 784 563 00019",
}

var kindLabels = map[domain.SessionKind]string{
	domain.KindIndividual: "Individual session",
	domain.KindDuo:        "Duo session",
	domain.KindCollective: "Collective session",
}

// InvoiceDocument assembles the render-ready payload for one invoice. The
// PDF itself is produced client side; this only gathers the lines.
func (s *LedgerService) InvoiceDocument(ctx context.Context, invoiceID uint) (domain.InvoiceDocument, error) {
	invoice, err := s.ledgerRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return domain.InvoiceDocument{}, fmt.Errorf("s.ledgerRepo.FindInvoiceByID -> %w", err)
	}
	if invoice.Sale == nil {
		return domain.InvoiceDocument{}, ErrSaleNotFound
	}

	sale := invoice.Sale
	doc := domain.InvoiceDocument{
		InvoiceID:     invoice.ID,
		MemberID:      invoice.MemberID,
		StudioLines:   studioLines,
		Description:   fmt.Sprintf("%s x%d", kindLabels[sale.Kind], sale.Quantity),
		Kind:          sale.Kind,
		Quantity:      sale.Quantity,
		Amount:        sale.Amount,
		Total:         invoice.Amount,
		IssuedAt:      invoice.IssuedAt,
		PaymentMethod: sale.PaymentMethod,
	}

	if sale.Member != nil {
		doc.ClientName = sale.Member.FullName()
		doc.ClientEmail = sale.Member.Email
	}

	return doc, nil
}
