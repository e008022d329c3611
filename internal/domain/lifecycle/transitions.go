// Package lifecycle reglas puras del ciclo de vida de un producto.
package lifecycle

import (
	"fmt"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// RoleTag etiqueta de rol que el contrato guarda en cada traspaso.
type RoleTag string

const (
	TagToSupplier RoleTag = "TO_SUPPLIER"
	TagToConsumer RoleTag = "TO_CONSUMER"
)

// Next etapa inmediatamente siguiente; false en withConsumer.
func Next(s entity.Stage) (entity.Stage, bool) {
	switch s {
	case entity.StagePending:
		return entity.StageRegistered, true
	case entity.StageRegistered:
		return entity.StageWithSupplier, true
	case entity.StageWithSupplier:
		return entity.StageWithConsumer, true
	}
	return 0, false
}

// DestinationFor etapa que un rol puede reclamar. Solo supplier y consumer reciben productos.
func DestinationFor(role entity.Role) (entity.Stage, error) {
	switch role {
	case entity.RoleSupplier:
		return entity.StageWithSupplier, nil
	case entity.RoleConsumer:
		return entity.StageWithConsumer, nil
	case entity.RoleAdmin, entity.RoleProducer:
		return 0, fmt.Errorf("%w: el rol %s no recibe productos", domain.ErrForbidden, role)
	}
	return 0, fmt.Errorf("%w: rol %s", domain.ErrInvalidInput, role)
}

// CheckDestination valida que destination corresponda al rol que actúa.
func CheckDestination(role entity.Role, destination entity.Stage) error {
	allowed, err := DestinationFor(role)
	if err != nil {
		return err
	}
	if allowed != destination {
		return fmt.Errorf("%w: %s no puede reclamar %s", domain.ErrForbidden, role, destination)
	}
	return nil
}

// CheckAdvance exige que destination siga inmediatamente a current. Nunca hay retrocesos ni saltos.
func CheckAdvance(current, destination entity.Stage) error {
	next, ok := Next(current)
	if !ok || next != destination {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current, destination)
	}
	return nil
}

// TagFor etiqueta de traspaso para la etapa destino.
func TagFor(destination entity.Stage) (RoleTag, error) {
	switch destination {
	case entity.StageWithSupplier:
		return TagToSupplier, nil
	case entity.StageWithConsumer:
		return TagToConsumer, nil
	}
	return "", fmt.Errorf("%w: %s no es destino de traspaso", domain.ErrInvalidInput, destination)
}
