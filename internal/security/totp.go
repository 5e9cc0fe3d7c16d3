package security

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod     = 30
	totpSkew       = 1
	totpSecretSize = 20
	qrSize         = 256
)

var totpValidateOpts = totp.ValidateOpts{
	Period:    totpPeriod,
	Skew:      totpSkew,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// TotpEnrollment is what an authenticator app needs, shown to the user once.
type TotpEnrollment struct {
	Secret string // base32
	URI    string // otpauth://
}

func GenerateTotpSecret(issuer, account string) (*TotpEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      totpPeriod,
		SecretSize:  totpSecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}
	return &TotpEnrollment{Secret: key.Secret(), URI: key.URL()}, nil
}

// VerifyTotp accepts the code for the current 30s step and one step either side.
// Malformed secrets or codes verify as false.
func VerifyTotp(secret, code string, now time.Time) bool {
	code = strings.TrimSpace(code)
	if secret == "" || code == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, now.UTC(), totpValidateOpts)
	return err == nil && ok
}

// ProvisioningQR renders uri as a PNG data URL.
func ProvisioningQR(uri string) (string, error) {
	code, err := qr.Encode(uri, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("qr encode: %w", err)
	}
	code, err = barcode.Scale(code, qrSize, qrSize)
	if err != nil {
		return "", fmt.Errorf("qr scale: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return "", fmt.Errorf("qr png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
