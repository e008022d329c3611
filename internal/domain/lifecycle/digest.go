package lifecycle

import (
	"bytes"
	"encoding/json"

	"github.com/ethereum/go-ethereum/crypto"
)

// metaFields orden de campos fijo: forma parte del digest.
type metaFields struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	BatchID     string `json:"batchId"`
}

// MetaDigest keccak256 del JSON compacto {"name","description","batchId"} en hex con 0x.
// La serialización coincide byte a byte con JSON.stringify.
func MetaDigest(name, description, batchRef string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(metaFields{Name: name, Description: description, BatchID: batchRef}); err != nil {
		return "", err
	}
	raw := unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return crypto.Keccak256Hash(raw).Hex(), nil
}

// unescapeLineSeparators devuelve U+2028 y U+2029 a su forma literal; encoding/json
// los escapa siempre y JSON.stringify no.
func unescapeLineSeparators(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if i+5 < len(b) && b[i+1] == 'u' {
			switch string(b[i+2 : i+6]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		// cualquier otro escape se copia entero para no confundir "\\u2028" literal
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}
