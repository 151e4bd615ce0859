package worker

// Processes JobTypeReceipt: renders the sale's PDF receipt and mails it to
// the customer through the SMTP circuit breaker.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"inventrack/internal/infra"
	"inventrack/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const receiptMaxAttempts = 3

// ReceiptMailer is the subset of infra.Mailer the worker needs.
type ReceiptMailer interface {
	SendReceipt(to, subject, body, fileName string, pdf []byte) error
}

type ReceiptWorker struct {
	sales     repository.SaleRepository
	mailer    ReceiptMailer
	cb        *infra.CircuitBreaker
	storeName string
}

func NewReceiptWorker(sales repository.SaleRepository, mailer ReceiptMailer, cb *infra.CircuitBreaker, storeName string) *ReceiptWorker {
	return &ReceiptWorker{sales: sales, mailer: mailer, cb: cb, storeName: storeName}
}

// Process loads the sale, renders the receipt and sends it. SMTP failures are
// retried with backoff; a disabled mailer or an open breaker stops the retries.
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("receipt_worker: invalid payload: %w", err)
	}
	if payload.Email == "" {
		log.Warn().Str("sale_id", payload.SaleID).Msg("receipt_worker: empty email, skipping")
		return nil
	}
	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		return fmt.Errorf("receipt_worker: invalid sale id %q", payload.SaleID)
	}

	sale, err := w.sales.FindByID(ctx, saleID)
	if err != nil {
		return fmt.Errorf("receipt_worker: load sale %s: %w", saleID, err)
	}
	pdf, err := infra.GenerateReceiptPDF(sale, w.storeName)
	if err != nil {
		return fmt.Errorf("receipt_worker: %w", err)
	}

	subject := fmt.Sprintf("%s receipt %s", w.storeName, sale.InvoiceNumber)
	body := fmt.Sprintf("Thank you for your purchase.\n\nInvoice: %s\nTotal: %s\n", sale.InvoiceNumber, sale.Total.StringFixed(2))
	fileName := infra.ReceiptFileName(sale)

	err = withRetry(ctx, receiptMaxAttempts, func(attempt int) (bool, error) {
		sendErr := w.cb.Execute(func() error {
			return w.mailer.SendReceipt(payload.Email, subject, body, fileName, pdf)
		})
		if sendErr == nil {
			return false, nil
		}
		if errors.Is(sendErr, infra.ErrMailerDisabled) || errors.Is(sendErr, infra.ErrCircuitOpen) {
			return true, sendErr
		}
		log.Warn().Err(sendErr).Int("attempt", attempt+1).Str("sale_id", payload.SaleID).
			Msg("receipt_worker: send failed, retrying")
		return false, sendErr
	})
	if errors.Is(err, infra.ErrMailerDisabled) {
		log.Info().Str("sale_id", payload.SaleID).Msg("receipt_worker: smtp disabled, receipt not sent")
		return nil
	}
	if err != nil {
		return fmt.Errorf("receipt_worker: send to %s: %w", payload.Email, err)
	}
	log.Info().Str("to", payload.Email).Str("invoice", sale.InvoiceNumber).Msg("receipt_worker: receipt sent")
	return nil
}
