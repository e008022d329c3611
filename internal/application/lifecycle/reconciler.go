// Package lifecycle mantiene la etapa de cada ProductRecord consistente con el resultado de las
// operaciones en el ledger y valida las transiciones antes de llamar al gateway.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	rules "github.com/jhoicas/Trazabilidad-api/internal/domain/lifecycle"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/pkg/ether"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

// ProposeInput campos del formulario de alta.
type ProposeInput struct {
	Name        string
	Description string
	BatchRef    string
	UnitPrice   string // ETH decimal
	Quantity    int64
}

// Reconciler único escritor de la colección de productos.
type Reconciler struct {
	store   repository.RecordStore
	chain   ports.ChainGateway
	network string
	log     *logger.Logger

	now   func() time.Time
	newID func() string

	// mu serializa cargar-modificar-guardar de la colección completa.
	mu sync.Mutex
	// inflight registros con una operación de ledger en curso.
	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// New construye el reconciliador. network es la red esperada (hex).
func New(store repository.RecordStore, chain ports.ChainGateway, network string, log *logger.Logger) *Reconciler {
	return &Reconciler{
		store:    store,
		chain:    chain,
		network:  strings.ToLower(network),
		log:      log.Component("lifecycle"),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
		inflight: map[string]struct{}{},
	}
}

// ─── Lecturas ─────────────────────────────────────────────────────────────────

// List todos los productos en el orden del almacén.
func (r *Reconciler) List(ctx context.Context) []entity.ProductRecord {
	return r.store.LoadProducts(ctx)
}

// Get un producto por localID.
func (r *Reconciler) Get(ctx context.Context, localID string) (*entity.ProductRecord, error) {
	products := r.store.LoadProducts(ctx)
	i := entity.FindProduct(products, localID)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	rec := products[i].Clone()
	return &rec, nil
}

// Inspect lee el producto directamente del ledger.
func (r *Reconciler) Inspect(ctx context.Context, onChainID uint64) (entity.ProductSnapshot, error) {
	return r.chain.ReadProduct(ctx, onChainID)
}

// ViewHistory historial de traspasos del ledger. ErrNotRegistered si el producto no tiene id.
func (r *Reconciler) ViewHistory(ctx context.Context, localID string) (iter.Seq2[entity.TransferEvent, error], error) {
	rec, err := r.Get(ctx, localID)
	if err != nil {
		return nil, err
	}
	if !rec.Registered() {
		return nil, domain.ErrNotRegistered
	}
	return r.chain.ReadHistory(ctx, *rec.OnChainID), nil
}

// ─── Alta y retiro local ──────────────────────────────────────────────────────

// ProposeProduct crea un registro pending con la siguiente secuencia provisional.
func (r *Reconciler) ProposeProduct(ctx context.Context, owner entity.Account, in ProposeInput) (*entity.ProductRecord, error) {
	if err := requireProducer(owner); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.UnitPrice) == "" {
		return nil, fmt.Errorf("%w: el precio es obligatorio", domain.ErrInvalidInput)
	}
	price, err := ether.NormalizeEther(in.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	products := r.store.LoadProducts(ctx)
	now := r.now()
	rec := entity.ProductRecord{
		LocalID:             r.newID(),
		ProvisionalSequence: entity.NextProvisionalSequence(products),
		Name:                name,
		Description:         strings.TrimSpace(in.Description),
		BatchRef:            strings.TrimSpace(in.BatchRef),
		UnitPrice:           price,
		Quantity:            in.Quantity,
		OwnerUsername:       owner.Username,
		OwnerRole:           entity.RoleProducer,
		Stage:               entity.StagePending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	r.store.SaveProducts(ctx, append(products, rec))

	r.log.Info().Str("local_id", rec.LocalID).Str("owner", owner.Username).
		Int64("seq", rec.ProvisionalSequence).Msg("producto propuesto")
	out := rec.Clone()
	return &out, nil
}

// WithdrawPending elimina el registro solo si sigue pending y sin transacción enviada.
// En cualquier otro caso no hace nada: lo que ya está en el ledger no se toca.
// Con otra operación en curso sobre el mismo registro devuelve ErrConflict.
func (r *Reconciler) WithdrawPending(ctx context.Context, localID string) error {
	if !r.acquire(localID) {
		return fmt.Errorf("%w: hay una operación en curso para el producto", domain.ErrConflict)
	}
	defer r.release(localID)

	r.mu.Lock()
	defer r.mu.Unlock()

	products := r.store.LoadProducts(ctx)
	i := entity.FindProduct(products, localID)
	if i < 0 {
		return nil
	}
	if products[i].Stage != entity.StagePending || products[i].PendingTx != nil {
		r.log.Debug().Str("local_id", localID).Str("stage", products[i].Stage.String()).Msg("retiro ignorado")
		return nil
	}
	remaining := make([]entity.ProductRecord, 0, len(products)-1)
	remaining = append(remaining, products[:i]...)
	remaining = append(remaining, products[i+1:]...)
	r.store.SaveProducts(ctx, remaining)

	r.log.Info().Str("local_id", localID).Msg("producto retirado")
	return nil
}

// ─── Operaciones en el ledger ─────────────────────────────────────────────────

// Publish registra en el ledger un producto pending del productor.
// Si había una transacción de registro enviada y sin confirmar, la consulta en vez de reenviar.
func (r *Reconciler) Publish(ctx context.Context, localID string, owner entity.Account) (*entity.ProductRecord, error) {
	if err := requireProducer(owner); err != nil {
		return nil, err
	}
	if !r.acquire(localID) {
		return nil, fmt.Errorf("%w: hay una operación en curso para el producto", domain.ErrConflict)
	}
	defer r.release(localID)

	rec, err := r.Get(ctx, localID)
	if err != nil {
		return nil, err
	}
	if rec.OwnerUsername != owner.Username {
		return nil, fmt.Errorf("%w: el producto pertenece a otro productor", domain.ErrForbidden)
	}
	if rec.Stage != entity.StagePending {
		return nil, fmt.Errorf("%w: publicar requiere pending, etapa actual %s", domain.ErrInvalidTransition, rec.Stage)
	}

	if rec.PendingTx != nil && rec.PendingTx.Action == entity.TxActionRegister {
		r.log.Info().Str("local_id", localID).Str("tx", rec.PendingTx.TxRef).Msg("consultando registro pendiente")
		reg, err := r.chain.AwaitRegistration(ctx, rec.PendingTx.TxRef)
		return r.settleRegistration(ctx, *rec, owner, rec.MetaDigest, reg, err)
	}

	digest, err := rules.MetaDigest(rec.Name, rec.Description, rec.BatchRef)
	if err != nil {
		return nil, fmt.Errorf("meta digest: %w", err)
	}
	priceWei, err := ether.ParseEther(rec.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if _, err := r.chain.EnsureNetwork(ctx, r.network); err != nil {
		return nil, err
	}
	reg, err := r.chain.Register(ctx, owner, digest, priceWei, uint64(rec.Quantity))
	return r.settleRegistration(ctx, *rec, owner, digest, reg, err)
}

func (r *Reconciler) settleRegistration(ctx context.Context, rec entity.ProductRecord, owner entity.Account, digest string, reg ports.Registration, callErr error) (*entity.ProductRecord, error) {
	if callErr == nil {
		id := reg.AssignedID
		rec.OnChainID = &id
		rec.MetaDigest = digest
		rec.Stage = entity.StageRegistered
		rec.LastTxRef = reg.TxRef
		rec.PendingTx = nil
		rec.UpdatedAt = r.now()
		if err := r.replace(ctx, rec); err != nil {
			r.log.Warn().Err(err).Str("local_id", rec.LocalID).Str("tx", reg.TxRef).Uint64("on_chain_id", id).
				Msg("discrepancia: registro confirmado pero no se pudo actualizar el registro local")
			return nil, err
		}
		r.log.Info().Str("local_id", rec.LocalID).Uint64("on_chain_id", id).Str("tx", reg.TxRef).Msg("producto registrado")
		return &rec, nil
	}
	return nil, r.settleFailure(ctx, rec, callErr, entity.PendingTx{
		Action:        entity.TxActionRegister,
		Destination:   entity.StageRegistered,
		ActorUsername: owner.Username,
	}, func(p *entity.ProductRecord) { p.MetaDigest = digest })
}

// AdvanceOwnership traspasa el producto al rol de acting (supplier -> withSupplier, consumer -> withConsumer).
func (r *Reconciler) AdvanceOwnership(ctx context.Context, localID string, destination entity.Stage, acting entity.Account) (*entity.ProductRecord, error) {
	if !r.acquire(localID) {
		return nil, fmt.Errorf("%w: hay una operación en curso para el producto", domain.ErrConflict)
	}
	defer r.release(localID)

	rec, err := r.Get(ctx, localID)
	if err != nil {
		return nil, err
	}
	if !rec.Registered() {
		return nil, domain.ErrNotRegistered
	}
	if err := rules.CheckDestination(acting.Role, destination); err != nil {
		return nil, err
	}
	if err := rules.CheckAdvance(rec.Stage, destination); err != nil {
		return nil, err
	}

	if p := rec.PendingTx; p != nil && p.Action == entity.TxActionTransfer {
		if p.Destination != destination || p.ActorUsername != acting.Username {
			return nil, fmt.Errorf("%w: traspaso pendiente de %s (tx %s)", domain.ErrConflict, p.ActorUsername, p.TxRef)
		}
		r.log.Info().Str("local_id", localID).Str("tx", p.TxRef).Msg("consultando traspaso pendiente")
		receipt, err := r.chain.AwaitTransfer(ctx, p.TxRef)
		return r.settleTransfer(ctx, *rec, destination, acting, receipt, err)
	}

	if !acting.HasAddress() {
		return nil, fmt.Errorf("%w: la cuenta %s no tiene dirección", domain.ErrInvalidAddress, acting.Username)
	}
	tag, err := rules.TagFor(destination)
	if err != nil {
		return nil, err
	}
	if _, err := r.chain.EnsureNetwork(ctx, r.network); err != nil {
		return nil, err
	}
	receipt, err := r.chain.Transfer(ctx, acting, *rec.OnChainID, acting.ChainAddress, tag)
	return r.settleTransfer(ctx, *rec, destination, acting, receipt, err)
}

func (r *Reconciler) settleTransfer(ctx context.Context, rec entity.ProductRecord, destination entity.Stage, acting entity.Account, receipt ports.TransferReceipt, callErr error) (*entity.ProductRecord, error) {
	if callErr == nil {
		rec.Stage = destination
		rec.OwnerUsername = acting.Username
		rec.OwnerRole = acting.Role
		rec.LastTxRef = receipt.TxRef
		rec.PendingTx = nil
		rec.UpdatedAt = r.now()
		if err := r.replace(ctx, rec); err != nil {
			r.log.Warn().Err(err).Str("local_id", rec.LocalID).Str("tx", receipt.TxRef).
				Msg("discrepancia: traspaso confirmado pero no se pudo actualizar el registro local")
			return nil, err
		}
		r.log.Info().Str("local_id", rec.LocalID).Str("stage", destination.String()).
			Str("owner", acting.Username).Str("tx", receipt.TxRef).Msg("producto traspasado")
		return &rec, nil
	}
	return nil, r.settleFailure(ctx, rec, callErr, entity.PendingTx{
		Action:        entity.TxActionTransfer,
		Destination:   destination,
		ActorUsername: acting.Username,
	}, nil)
}

// settleFailure deja etapa y dueño sin cambios. Si el error lleva referencia de transacción:
// revertida o rechazada limpia PendingTx; cualquier otro caso la guarda para consultar después.
func (r *Reconciler) settleFailure(ctx context.Context, rec entity.ProductRecord, callErr error, pending entity.PendingTx, onPending func(*entity.ProductRecord)) error {
	txRef, ok := domain.TxRefOf(callErr)
	if !ok {
		return callErr
	}
	if errors.Is(callErr, domain.ErrTxReverted) || errors.Is(callErr, domain.ErrTxRejected) {
		r.log.Warn().Err(callErr).Str("local_id", rec.LocalID).Str("tx", txRef).Msg("transacción fallida")
		if rec.PendingTx != nil {
			rec.PendingTx = nil
			rec.UpdatedAt = r.now()
			if err := r.replace(ctx, rec); err != nil {
				r.log.Warn().Err(err).Str("local_id", rec.LocalID).Msg("no se pudo limpiar la transacción pendiente")
			}
		}
		return callErr
	}

	pending.TxRef = txRef
	pending.SubmittedAt = r.now()
	if rec.PendingTx != nil && rec.PendingTx.TxRef == txRef {
		pending.SubmittedAt = rec.PendingTx.SubmittedAt
	}
	rec.PendingTx = &pending
	if onPending != nil {
		onPending(&rec)
	}
	rec.UpdatedAt = r.now()
	if err := r.replace(ctx, rec); err != nil {
		r.log.Warn().Err(err).Str("local_id", rec.LocalID).Msg("no se pudo guardar la transacción pendiente")
	}
	r.log.Warn().Err(callErr).Str("local_id", rec.LocalID).Str("tx", txRef).Str("action", string(pending.Action)).
		Msg("discrepancia: transacción enviada sin resultado confirmado; reintentar consulta sin reenviar")
	return callErr
}

// ─── Conciliación con el ledger ───────────────────────────────────────────────

// Reconcile pone al día el registro local con el ledger: resuelve transacciones pendientes
// y adelanta la etapa si el ledger va por delante. Nunca retrocede; un ledger atrasado se registra en el log.
func (r *Reconciler) Reconcile(ctx context.Context, localID string) (*entity.ProductRecord, error) {
	if !r.acquire(localID) {
		return nil, fmt.Errorf("%w: hay una operación en curso para el producto", domain.ErrConflict)
	}
	defer r.release(localID)

	rec, err := r.Get(ctx, localID)
	if err != nil {
		return nil, err
	}
	accounts := r.store.LoadAccounts(ctx)

	if p := rec.PendingTx; p != nil {
		actor, found := entity.FindAccountByUsername(accounts, p.ActorUsername)
		if !found {
			actor = entity.Account{Username: p.ActorUsername, Role: roleForStage(p.Destination)}
		}
		switch p.Action {
		case entity.TxActionRegister:
			reg, err := r.chain.AwaitRegistration(ctx, p.TxRef)
			if _, err := r.settleRegistration(ctx, *rec, actor, rec.MetaDigest, reg, err); err != nil {
				return nil, err
			}
		case entity.TxActionTransfer:
			receipt, err := r.chain.AwaitTransfer(ctx, p.TxRef)
			if _, err := r.settleTransfer(ctx, *rec, p.Destination, actor, receipt, err); err != nil {
				return nil, err
			}
		}
		if rec, err = r.Get(ctx, localID); err != nil {
			return nil, err
		}
	}

	if !rec.Registered() {
		return rec, nil
	}
	snap, err := r.chain.ReadProduct(ctx, *rec.OnChainID)
	if err != nil {
		return nil, err
	}
	ledgerStage := snap.Stage()
	switch {
	case ledgerStage < rec.Stage:
		r.log.Warn().Str("local_id", localID).Str("local_stage", rec.Stage.String()).
			Str("ledger_stage", ledgerStage.String()).Msg("discrepancia: el ledger está detrás del registro local; no se aplica")
		return rec, nil
	case ledgerStage == rec.Stage:
		return rec, nil
	case ledgerStage > rec.Stage+1:
		// el ledger solo avanza de a un paso: las intermedias ya ocurrieron allí
		r.log.Warn().Str("local_id", localID).Str("local_stage", rec.Stage.String()).
			Str("skipped_stage", (rec.Stage + 1).String()).Str("ledger_stage", ledgerStage.String()).
			Msg("discrepancia: el registro local se salta etapas hasta alcanzar el ledger")
	}

	holder, found := entity.FindAccountByAddress(accounts, snap.Holder())
	if !found || holder.Role != roleForStage(ledgerStage) {
		r.log.Warn().Str("local_id", localID).Str("holder", snap.Holder()).
			Msg("discrepancia: el tenedor en el ledger no corresponde a una cuenta local")
		holder = entity.Account{Username: snap.Holder(), Role: roleForStage(ledgerStage)}
	}
	rec.Stage = ledgerStage
	rec.OwnerUsername = holder.Username
	rec.OwnerRole = holder.Role
	rec.UpdatedAt = r.now()
	if err := r.replace(ctx, *rec); err != nil {
		return nil, err
	}
	r.log.Info().Str("local_id", localID).Str("stage", ledgerStage.String()).Msg("registro puesto al día con el ledger")
	return rec, nil
}

func roleForStage(s entity.Stage) entity.Role {
	switch s {
	case entity.StageWithSupplier:
		return entity.RoleSupplier
	case entity.StageWithConsumer:
		return entity.RoleConsumer
	}
	return entity.RoleProducer
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func requireProducer(a entity.Account) error {
	switch a.Role {
	case entity.RoleProducer:
		return nil
	case entity.RoleAdmin, entity.RoleSupplier, entity.RoleConsumer:
		return fmt.Errorf("%w: solo un productor puede hacerlo", domain.ErrForbidden)
	}
	return fmt.Errorf("%w: rol %s", domain.ErrInvalidInput, a.Role)
}

// replace sustituye el registro completo; nunca muta campos sueltos de la colección.
func (r *Reconciler) replace(ctx context.Context, rec entity.ProductRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	products := r.store.LoadProducts(ctx)
	i := entity.FindProduct(products, rec.LocalID)
	if i < 0 {
		return domain.ErrNotFound
	}
	products[i] = rec.Clone()
	r.store.SaveProducts(ctx, products)
	return nil
}

func (r *Reconciler) acquire(localID string) bool {
	r.inflightMu.Lock()
	defer r.inflightMu.Unlock()
	if _, busy := r.inflight[localID]; busy {
		return false
	}
	r.inflight[localID] = struct{}{}
	return true
}

func (r *Reconciler) release(localID string) {
	r.inflightMu.Lock()
	delete(r.inflight, localID)
	r.inflightMu.Unlock()
}
