package billing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMapInvoiceInsertErr(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "uq_invoices_number"}
	require.ErrorIs(t, mapInvoiceInsertErr(dup), ErrDuplicateNumber)

	// Also matches when the driver error arrives wrapped.
	require.ErrorIs(t, mapInvoiceInsertErr(fmt.Errorf("insert invoice: %w", dup)), ErrDuplicateNumber)

	other := &pgconn.PgError{Code: "23503", ConstraintName: "invoices_lease_id_fkey"}
	require.NotErrorIs(t, mapInvoiceInsertErr(other), ErrDuplicateNumber)

	plain := errors.New("connection reset")
	require.Equal(t, plain, mapInvoiceInsertErr(plain))
}
