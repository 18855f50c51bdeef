package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuote_CanBeAccepted(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	//SENTかつ期限内
	q := Quote{Status: QuoteStatusSent, ValidUntil: now.AddDate(0, 0, 7)}
	assert.True(t, q.CanBeAccepted(now))

	//期限ちょうどはまだ有効
	q.ValidUntil = now
	assert.True(t, q.CanBeAccepted(now))

	//期限切れ
	q.ValidUntil = now.Add(-time.Second)
	assert.False(t, q.CanBeAccepted(now))

	//SENT以外は期限内でも不可
	for _, s := range []QuoteStatus{QuoteStatusDraft, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired, QuoteStatusConverted} {
		q := Quote{Status: s, ValidUntil: now.AddDate(0, 0, 7)}
		assert.False(t, q.CanBeAccepted(now), string(s))
	}
}

func TestQuote_CanBeConverted(t *testing.T) {
	assert.True(t, Quote{Status: QuoteStatusAccepted}.CanBeConverted())

	orderID := int64(42)
	assert.False(t, Quote{Status: QuoteStatusAccepted, OrderID: &orderID}.CanBeConverted())
	assert.False(t, Quote{Status: QuoteStatusSent}.CanBeConverted())
	assert.False(t, Quote{Status: QuoteStatusConverted, OrderID: &orderID}.CanBeConverted())
}
