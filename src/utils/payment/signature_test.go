package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testSecret = "whsec_a9f1c3"

func sign(paymentId, requestId, ts, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "id:%s;request-id:%s;ts:%s;", paymentId, requestId, ts)
	return hex.EncodeToString(mac.Sum(nil))
}

func signedHeader(paymentId, requestId, ts, secret string) http.Header {
	header := http.Header{}
	header.Set(SignatureHeader, fmt.Sprintf("ts=%s,v1=%s", ts, sign(paymentId, requestId, ts, secret)))
	header.Set(RequestIdHeader, requestId)
	return header
}

func notificationBody(paymentId string) []byte {
	return []byte(fmt.Sprintf(`{"type":"payment","data":{"id":"%s"}}`, paymentId))
}

func TestVerifySignatureAcceptsValid(t *testing.T) {
	header := signedHeader("123", "req-1", "1700000000", testSecret)
	assert.True(t, VerifySignature(header, notificationBody("123"), testSecret))
}

func TestVerifySignatureAcceptsSpacedHeader(t *testing.T) {
	header := http.Header{}
	header.Set(SignatureHeader, fmt.Sprintf("ts=%s, v1=%s", "1700000000", sign("123", "req-1", "1700000000", testSecret)))
	header.Set(RequestIdHeader, "req-1")
	assert.True(t, VerifySignature(header, notificationBody("123"), testSecret))
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	header := signedHeader("123", "req-1", "1700000000", "whsec_other")
	assert.False(t, VerifySignature(header, notificationBody("123"), testSecret))
}

func TestVerifySignatureRejectsTamperedPaymentId(t *testing.T) {
	header := signedHeader("123", "req-1", "1700000000", testSecret)
	assert.False(t, VerifySignature(header, notificationBody("456"), testSecret))
}

func TestVerifySignatureRejectsMissingHeaders(t *testing.T) {
	body := notificationBody("123")

	assert.False(t, VerifySignature(http.Header{}, body, testSecret))

	onlyRequestId := http.Header{}
	onlyRequestId.Set(RequestIdHeader, "req-1")
	assert.False(t, VerifySignature(onlyRequestId, body, testSecret))

	onlySignature := signedHeader("123", "req-1", "1700000000", testSecret)
	onlySignature.Del(RequestIdHeader)
	assert.False(t, VerifySignature(onlySignature, body, testSecret))
}

func TestVerifySignatureRejectsMalformedHeader(t *testing.T) {
	body := notificationBody("123")

	for _, signature := range []string{"", "garbage", "ts=123", "v1=abc", "ts=123,v1="} {
		header := http.Header{}
		header.Set(SignatureHeader, signature)
		header.Set(RequestIdHeader, "req-1")
		assert.False(t, VerifySignature(header, body, testSecret), signature)
	}
}

func TestVerifySignatureRejectsBodyWithoutPaymentId(t *testing.T) {
	header := signedHeader("123", "req-1", "1700000000", testSecret)
	assert.False(t, VerifySignature(header, []byte(`{"type":"payment","data":{}}`), testSecret))
	assert.False(t, VerifySignature(header, []byte(`not json`), testSecret))
}

func TestVerifySignatureAcceptsUppercaseMac(t *testing.T) {
	mac := sign("123", "req-1", "1700000000", testSecret)
	header := http.Header{}
	header.Set(SignatureHeader, fmt.Sprintf("ts=%s,v1=%s", "1700000000", mac))
	header.Set(RequestIdHeader, "req-1")

	// Hex case must not matter
	for i, r := range mac {
		if r >= 'a' && r <= 'f' {
			upper := mac[:i] + string(r-32) + mac[i+1:]
			header.Set(SignatureHeader, fmt.Sprintf("ts=%s,v1=%s", "1700000000", upper))
			break
		}
	}
	assert.True(t, VerifySignature(header, notificationBody("123"), testSecret))
}
