package utils

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// GenerateSepaQR génère un QR SEPA (format EPC) en base64 prêt à mettre
// dans <img src="...">. Le client scanne le code dans son app bancaire
// pour pré-remplir le virement avec le numéro de commande en communication.
func GenerateSepaQR(iban, bic, name, ref string, amount float64) (string, error) {
	// format EPC basique
	sepa := fmt.Sprintf(`BCD
001
1
SCT
%s
%s
%s
EUR%.2f
%s`, bic, name, iban, amount, ref)

	png, err := qrcode.Encode(sepa, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
