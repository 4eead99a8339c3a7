package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dedicart/gateway/src/utils/logger"
)

const (
	SignatureHeader = "X-Signature"
	RequestIdHeader = "X-Request-Id"
)

// Validates that a webhook notification genuinely originated from the
// payment provider. The signature header carries "ts=<unix>,v1=<hex mac>",
// the MAC is an HMAC-SHA256 over "id:<paymentId>;request-id:<requestId>;ts:<ts>;".
// Fails closed: any missing header, missing payment id or malformed
// signature yields false. Must run before any state mutating logic.
func VerifySignature(header http.Header, body []byte, secret string) bool {
	log := logger.NewSublogger("signature")

	signature := header.Get(SignatureHeader)
	requestId := header.Get(RequestIdHeader)
	if signature == "" || requestId == "" {
		log.Error("Missing signature headers")
		return false
	}

	ts, v1, ok := parseSignature(signature)
	if !ok {
		log.Error("Malformed signature header")
		return false
	}

	var notification Notification
	err := json.Unmarshal(body, &notification)
	if err != nil || notification.Data.Id == "" {
		log.Error("Missing payment id in notification body")
		return false
	}

	template := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", notification.Data.Id, requestId, ts)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(template))
	expected := hex.EncodeToString(mac.Sum(nil))

	// Constant time compare, avoids timing side channels
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(v1)))
}

// Splits "ts=<unix>,v1=<hex>" into its parts
func parseSignature(signature string) (ts, v1 string, ok bool) {
	for _, part := range strings.Split(signature, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return "", "", false
		}
		switch key {
		case "ts":
			ts = value
		case "v1":
			v1 = value
		}
	}
	ok = ts != "" && v1 != ""
	return
}
