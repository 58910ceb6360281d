package service

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"kindergarten_backend/internals/constants"
	helper "kindergarten_backend/internals/helpers"
)

var ErrGatewayNotConfigured = errors.New("payment gateway not configured")

/* =========================================================
   Gateway
========================================================= */

type CheckoutInput struct {
	OrderID     string
	Amount      float64
	Description string
	ChildName   string
	ParentName  string
	ParentEmail string
	ParentPhone string
}

type Checkout struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type Gateway interface {
	CreateCheckout(ctx context.Context, in CheckoutInput) (*Checkout, error)
	ServerKey() string
}

// SnapGateway membuat transaksi Snap Midtrans.
type SnapGateway struct {
	client    snap.Client
	serverKey string
}

// NewSnapGateway returns nil when serverKey is empty.
// useProduction=true untuk Production, false untuk Sandbox.
func NewSnapGateway(serverKey string, useProduction bool) *SnapGateway {
	serverKey = strings.TrimSpace(serverKey)
	if serverKey == "" {
		return nil
	}
	g := &SnapGateway{serverKey: serverKey}
	if useProduction {
		g.client.New(serverKey, midtrans.Production)
	} else {
		g.client.New(serverKey, midtrans.Sandbox)
	}
	return g
}

func (g *SnapGateway) ServerKey() string { return g.serverKey }

func (g *SnapGateway) CreateCheckout(_ context.Context, in CheckoutInput) (*Checkout, error) {
	if in.Amount <= 0 {
		return nil, errors.New("invalid amount")
	}
	gross := int64(math.Round(in.Amount))
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  in.OrderID,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: in.ParentName,
			Email: in.ParentEmail,
			Phone: in.ParentPhone,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:       in.OrderID,
			Price:    gross,
			Qty:      1,
			Name:     truncate(firstNonEmpty(in.Description, "Kindergarten fee"), 50),
			Category: "tuition",
		}},
	}
	if in.ChildName != "" {
		req.CustomField1 = truncate(in.ChildName, 40)
	}
	resp, err := g.client.CreateTransaction(req)
	if err != nil {
		return nil, err
	}
	return &Checkout{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

/* =========================================================
   Order id, signature & status mapping
========================================================= */

// OrderID: BILL-<8 hex bill id>-<unix>.
func OrderID(billID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("BILL-%s-%d", helper.ShortID(billID), now.Unix())
}

// Signature = SHA512(order_id + status_code + gross_amount + server_key)
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

func VerifySignature(orderID, statusCode, grossAmount, serverKey, got string) bool {
	if got == "" || serverKey == "" {
		return false
	}
	want := Signature(orderID, statusCode, grossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(got))) == 1
}

// MapMidtransStatus mengonversi transaction_status Midtrans menjadi status bill.
// paid=true berarti paidAt perlu diisi. Bill yang sudah paid tidak pernah turun
// status walau notifikasi pending/expire/cancel datang terlambat.
func MapMidtransStatus(current, transactionStatus, fraudStatus string) (status string, paid bool) {
	status, paid = mapTransactionStatus(current, transactionStatus, fraudStatus)
	if current == constants.BillStatusPaid && status != constants.BillStatusPaid {
		return current, false
	}
	return status, paid
}

func mapTransactionStatus(current, transactionStatus, fraudStatus string) (string, bool) {
	switch strings.ToLower(transactionStatus) {
	case "capture":
		switch strings.ToLower(fraudStatus) {
		case "", "accept":
			return constants.BillStatusPaid, true
		case "challenge":
			return constants.BillStatusPending, false
		default:
			return constants.BillStatusCanceled, false
		}
	case "settlement":
		return constants.BillStatusPaid, true
	case "pending":
		return constants.BillStatusPending, false
	case "expire":
		return constants.BillStatusExpired, false
	case "cancel", "deny":
		return constants.BillStatusCanceled, false
	}
	return current, false
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

func firstNonEmpty(s, def string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return def
}
