package entity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role rol de una cuenta. Conjunto cerrado: admin, producer, supplier, consumer.
type Role uint8

const (
	RoleAdmin Role = iota + 1
	RoleProducer
	RoleSupplier
	RoleConsumer
)

// Roles devuelve todos los roles válidos en orden.
func Roles() []Role {
	return []Role{RoleAdmin, RoleProducer, RoleSupplier, RoleConsumer}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleProducer:
		return "producer"
	case RoleSupplier:
		return "supplier"
	case RoleConsumer:
		return "consumer"
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// Valid indica si r es uno de los cuatro roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProducer, RoleSupplier, RoleConsumer:
		return true
	}
	return false
}

// ParseRole interpreta el nombre del rol sin distinguir mayúsculas.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "producer":
		return RoleProducer, nil
	case "supplier":
		return RoleSupplier, nil
	case "consumer":
		return RoleConsumer, nil
	}
	return 0, fmt.Errorf("rol desconocido %q", s)
}

func (r Role) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("rol inválido %d", uint8(r))
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
