package services

import (
	"context"
	"errors"
	"sync"

	"therapy-booking-server/internal/payment"
)

// -- Mock Invoicer --

type mockInvoicer struct {
	mu       sync.Mutex
	requests []payment.InvoiceRequest
	data     *payment.InvoiceData
	err      error
}

func (m *mockInvoicer) CreateInvoice(_ context.Context, req payment.InvoiceRequest) (*payment.InvoiceData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.data != nil {
		return m.data, nil
	}
	return &payment.InvoiceData{ID: "INV-" + req.TransactionID}, nil
}

var errTimeout = errors.New("context deadline exceeded (Client.Timeout exceeded while awaiting headers)")
