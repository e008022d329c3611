// Package ether convierte montos decimales en ETH a wei y da formato a identificadores de red.
package ether

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimals cantidad de decimales de 1 ETH expresado en wei.
const Decimals = 18

// MaxWeiBits el contrato guarda montos como uint256.
const MaxWeiBits = 256

// ParseEther convierte "1.5" en 1500000000000000000 wei.
// Un string vacío equivale a "0". Rechaza negativos, más de 18 decimales significativos
// y montos que no caben en un uint256.
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = "0"
	}
	if strings.ContainsAny(s, "eE") {
		return nil, fmt.Errorf("ether: notación exponencial no soportada %q", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("ether: monto inválido %q", s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("ether: monto negativo %q", s)
	}
	wei := d.Shift(Decimals)
	if !wei.IsInteger() {
		return nil, fmt.Errorf("ether: más de %d decimales en %q", Decimals, s)
	}
	out := wei.BigInt()
	if out.BitLen() > MaxWeiBits {
		return nil, fmt.Errorf("ether: monto fuera de rango uint256 %q", s)
	}
	return out, nil
}

// FormatEther convierte wei a ETH en texto, siempre con parte decimal ("1.0", "0.25").
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0.0"
	}
	s := decimal.NewFromBigInt(wei, -Decimals).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// NormalizeEther valida el monto y lo devuelve en forma canónica ("1.50" -> "1.5").
func NormalizeEther(s string) (string, error) {
	wei, err := ParseEther(s)
	if err != nil {
		return "", err
	}
	return FormatEther(wei), nil
}
