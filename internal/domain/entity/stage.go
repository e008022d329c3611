package entity

import (
	"encoding/json"
	"fmt"
)

// Stage etapa del ciclo de vida. Orden total: pending < registered < withSupplier < withConsumer.
type Stage uint8

const (
	StagePending Stage = iota + 1
	StageRegistered
	StageWithSupplier
	StageWithConsumer
)

func (s Stage) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageRegistered:
		return "registered"
	case StageWithSupplier:
		return "withSupplier"
	case StageWithConsumer:
		return "withConsumer"
	}
	return fmt.Sprintf("Stage(%d)", uint8(s))
}

// Valid indica si s es una de las cuatro etapas.
func (s Stage) Valid() bool {
	return s >= StagePending && s <= StageWithConsumer
}

// ParseStage interpreta el nombre de la etapa.
func ParseStage(s string) (Stage, error) {
	switch s {
	case "pending":
		return StagePending, nil
	case "registered":
		return StageRegistered, nil
	case "withSupplier":
		return StageWithSupplier, nil
	case "withConsumer":
		return StageWithConsumer, nil
	}
	return 0, fmt.Errorf("etapa desconocida %q", s)
}

func (s Stage) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("etapa inválida %d", uint8(s))
	}
	return json.Marshal(s.String())
}

// legacyApproved estado de los registros guardados por el front: producto ya registrado en el ledger.
// Solo se acepta al leer; se vuelve a escribir como "registered".
const legacyApproved = "approved"

func (s *Stage) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == legacyApproved {
		*s = StageRegistered
		return nil
	}
	parsed, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
