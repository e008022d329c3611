package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Trazabilidad-api/internal/application/auth"
	"github.com/jhoicas/Trazabilidad-api/internal/application/certificate"
	applifecycle "github.com/jhoicas/Trazabilidad-api/internal/application/lifecycle"
	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/Trazabilidad-api/internal/application/usecase"
	"github.com/jhoicas/Trazabilidad-api/internal/application/views"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	rules "github.com/jhoicas/Trazabilidad-api/internal/domain/lifecycle"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/localstore"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Trazabilidad-api/internal/interfaces/http"
	"github.com/jhoicas/Trazabilidad-api/pkg/logger"
)

const (
	testNetwork  = "0xaa36a7"
	testContract = "0x00000000000000000000000000000000000000cc"
)

// ─── Gateway de prueba ────────────────────────────────────────────────────────

type stubChain struct {
	registerRes ports.Registration
	registerErr error
	transferRes ports.TransferReceipt
	confirmed   []bool // ports.Confirmed(ctx) en cada Register/Transfer
	history     []entity.TransferEvent
}

func (s *stubChain) Connect(ctx context.Context, signer entity.Account) (ports.Connection, error) {
	if !ports.Confirmed(ctx) {
		return ports.Connection{}, domain.ErrUserRejected
	}
	return ports.Connection{Address: signer.ChainAddress, NetworkID: testNetwork}, nil
}

func (s *stubChain) EnsureNetwork(_ context.Context, expected string) (string, error) {
	return expected, nil
}

func (s *stubChain) Register(ctx context.Context, _ entity.Account, _ string, _ *big.Int, _ uint64) (ports.Registration, error) {
	s.confirmed = append(s.confirmed, ports.Confirmed(ctx))
	return s.registerRes, s.registerErr
}

func (s *stubChain) Transfer(ctx context.Context, _ entity.Account, _ uint64, _ string, _ rules.RoleTag) (ports.TransferReceipt, error) {
	s.confirmed = append(s.confirmed, ports.Confirmed(ctx))
	return s.transferRes, nil
}

func (s *stubChain) AwaitRegistration(context.Context, string) (ports.Registration, error) {
	return s.registerRes, s.registerErr
}

func (s *stubChain) AwaitTransfer(context.Context, string) (ports.TransferReceipt, error) {
	return s.transferRes, nil
}

func (s *stubChain) ReadProduct(_ context.Context, id uint64) (entity.ProductSnapshot, error) {
	return entity.ProductSnapshot{ID: id, Approved: true}, nil
}

func (s *stubChain) ReadHistory(context.Context, uint64) iter.Seq2[entity.TransferEvent, error] {
	return func(yield func(entity.TransferEvent, error) bool) {
		for _, ev := range s.history {
			if !yield(ev, nil) {
				return
			}
		}
	}
}

type stubGenerator struct{}

func (stubGenerator) GenerateCertificate(context.Context, certificate.Data) ([]byte, error) {
	return []byte("%PDF-1.3 prueba"), nil
}

// ─── Fixture ──────────────────────────────────────────────────────────────────

type apiEnv struct {
	app   *fiber.App
	chain *stubChain
	store *localstore.Store
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	log := logger.Nop()
	store, err := localstore.New(memory.NewStateStorage(), localstore.Options{
		BcryptCost:   bcrypt.MinCost,
		SeedNetwork:  testNetwork,
		SeedContract: testContract,
	}, log)
	require.NoError(t, err)

	chain := &stubChain{}
	n := 0
	keys := func() (string, string, error) {
		n++
		return fmt.Sprintf("%064x", n), fmt.Sprintf("0x%040x", 0xb0+n), nil
	}
	authUC := auth.NewAuthUseCase(store, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 5, Issuer: testIssuer})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      authUC,
		AccountUC:   usecase.NewAccountUseCase(store, keys, bcrypt.MinCost, log),
		NetworkUC:   usecase.NewNetworkUseCase(store, chain, testNetwork, log),
		ViewUC:      views.NewViewUseCase(store),
		Lifecycle:   applifecycle.New(store, chain, testNetwork, log),
		Certificate: certificate.NewPDFUseCase(store, chain, testNetwork, stubGenerator{}),
		Contracts:   store,
		Network:     testNetwork,
		JWTSecret:   testJWTSecret,
	})
	return &apiEnv{app: app, chain: chain, store: store}
}

func (e *apiEnv) call(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func (e *apiEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	status, body := e.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, status, string(body))
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	return out.Token
}

// withAccounts crea prod, prov y cli; devuelve sus tokens.
func (e *apiEnv) withAccounts(t *testing.T) (adminTok, prodTok, provTok, cliTok string) {
	t.Helper()
	adminTok = e.login(t, "admin", "admin")
	for _, a := range []struct{ user, role string }{{"prod", "producer"}, {"prov", "supplier"}, {"cli", "consumer"}} {
		status, body := e.call(t, http.MethodPost, "/api/accounts", adminTok, map[string]string{"username": a.user, "password": "1234", "role": a.role})
		require.Equal(t, http.StatusCreated, status, string(body))
	}
	return adminTok, e.login(t, "prod", "1234"), e.login(t, "prov", "1234"), e.login(t, "cli", "1234")
}

type productJSON struct {
	LocalID   string  `json:"localId"`
	DisplayID string  `json:"displayId"`
	OnChainID *uint64 `json:"onChainId"`
	Owner     string  `json:"owner"`
	Status    string  `json:"status"`
	PendingTx *struct {
		TxRef string `json:"txRef"`
	} `json:"pendingTx"`
}

func decodeProduct(t *testing.T, body []byte) productJSON {
	t.Helper()
	var p productJSON
	require.NoError(t, json.Unmarshal(body, &p), string(body))
	return p
}

func (e *apiEnv) propose(t *testing.T, token string) productJSON {
	t.Helper()
	status, body := e.call(t, http.MethodPost, "/api/products", token, map[string]any{"name": "Café", "price": "0.05", "qty": 10})
	require.Equal(t, http.StatusCreated, status, string(body))
	return decodeProduct(t, body)
}

// ─── Auth / cuentas ───────────────────────────────────────────────────────────

func TestLogin_CredencialesInvalidas(t *testing.T) {
	e := newAPI(t)
	status, body := e.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "otra"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, string(body), "UNAUTHORIZED")

	status, _ = e.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAccounts_SoloAdmin(t *testing.T) {
	e := newAPI(t)
	_, prodTok, _, _ := e.withAccounts(t)

	status, _ := e.call(t, http.MethodGet, "/api/accounts", prodTok, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAccounts_DuplicadoYAdminIndeleble(t *testing.T) {
	e := newAPI(t)
	adminTok, _, _, _ := e.withAccounts(t)

	status, body := e.call(t, http.MethodPost, "/api/accounts", adminTok, map[string]string{"username": "prod", "password": "x", "role": "producer"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(body), "CONFLICT")

	status, _ = e.call(t, http.MethodDelete, "/api/accounts/"+entity.AdminAccountID, adminTok, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = e.call(t, http.MethodPut, "/api/accounts/admin/address", adminTok, map[string]string{"address": "no-es-direccion"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "INVALID_ADDRESS")
}

func TestAccounts_TokenDeCuentaEliminada(t *testing.T) {
	e := newAPI(t)
	adminTok, prodTok, _, _ := e.withAccounts(t)

	accounts := e.store.LoadAccounts(context.Background())
	prod, ok := entity.FindAccountByUsername(accounts, "prod")
	require.True(t, ok)
	status, _ := e.call(t, http.MethodDelete, "/api/accounts/"+prod.ID, adminTok, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = e.call(t, http.MethodGet, "/api/products", prodTok, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

// ─── Productos ────────────────────────────────────────────────────────────────

func TestProducts_ProponerSoloProducer(t *testing.T) {
	e := newAPI(t)
	_, prodTok, provTok, _ := e.withAccounts(t)

	p := e.propose(t, prodTok)
	assert.Equal(t, "pending", p.Status)
	assert.Nil(t, p.OnChainID)
	assert.Equal(t, "prod", p.Owner)

	status, _ := e.call(t, http.MethodPost, "/api/products", provTok, map[string]any{"name": "X", "price": "1", "qty": 1})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := e.call(t, http.MethodPost, "/api/products", prodTok, map[string]any{"name": "", "price": "1", "qty": 1})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "VALIDATION")
}

func TestProducts_CicloCompleto(t *testing.T) {
	e := newAPI(t)
	_, prodTok, provTok, cliTok := e.withAccounts(t)
	p := e.propose(t, prodTok)

	e.chain.registerRes = ports.Registration{TxRef: "0xreg", AssignedID: 7}
	status, body := e.call(t, http.MethodPost, "/api/products/"+p.LocalID+"/publish", prodTok, map[string]bool{"confirm": true})
	require.Equal(t, http.StatusOK, status, string(body))
	pub := decodeProduct(t, body)
	assert.Equal(t, "registered", pub.Status)
	require.NotNil(t, pub.OnChainID)
	assert.Equal(t, uint64(7), *pub.OnChainID)
	assert.Equal(t, []bool{true}, e.chain.confirmed)

	// Un producto publicado ya no se retira.
	status, _ = e.call(t, http.MethodDelete, "/api/products/"+p.LocalID, prodTok, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = e.call(t, http.MethodGet, "/api/products/"+p.LocalID, prodTok, nil)
	assert.Equal(t, http.StatusOK, status)

	// Un consumer no puede saltarse al supplier.
	status, _ = e.call(t, http.MethodPost, "/api/products/"+p.LocalID+"/transfer", cliTok, map[string]any{"destination": "withConsumer", "confirm": true})
	assert.Equal(t, http.StatusBadRequest, status)

	e.chain.transferRes = ports.TransferReceipt{TxRef: "0xtr1"}
	status, body = e.call(t, http.MethodPost, "/api/products/"+p.LocalID+"/transfer", provTok, map[string]any{"destination": "withSupplier", "confirm": true})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "withSupplier", decodeProduct(t, body).Status)
	assert.Equal(t, "prov", decodeProduct(t, body).Owner)

	e.chain.transferRes = ports.TransferReceipt{TxRef: "0xtr2"}
	status, body = e.call(t, http.MethodPost, "/api/products/"+p.LocalID+"/transfer", cliTok, map[string]any{"destination": "withConsumer", "confirm": true})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "withConsumer", decodeProduct(t, body).Status)

	// Ya no es del productor.
	status, _ = e.call(t, http.MethodDelete, "/api/products/"+p.LocalID, prodTok, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestProducts_TransferDestinoInvalido(t *testing.T) {
	e := newAPI(t)
	_, prodTok, provTok, _ := e.withAccounts(t)
	p := e.propose(t, prodTok)

	status, body := e.call(t, http.MethodPost, "/api/products/"+p.LocalID+"/transfer", provTok, map[string]any{"destination": "bodega"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "VALIDATION")

	status, body = e.call(t, http.MethodPost, "/api/products/"+p.LocalID+"/transfer", provTok, map[string]any{"destination": "withSupplier"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(body), "NOT_REGISTERED")
}

func TestProducts_PublishPendienteDevuelve202(t *testing.T) {
	e := newAPI(t)
	_, prodTok, _, _ := e.withAccounts(t)
	p := e.propose(t, prodTok)

	e.chain.registerErr = &domain.TxError{TxRef: "0xabc", Err: domain.ErrTxPending}
	status, body := e.call(t, http.MethodPost, "/api/products/"+p.LocalID+"/publish", prodTok, nil)
	assert.Equal(t, http.StatusAccepted, status)

	var errBody struct {
		Code  string `json:"code"`
		TxRef string `json:"txRef"`
	}
	require.NoError(t, json.Unmarshal(body, &errBody))
	assert.Equal(t, "TX_PENDING", errBody.Code)
	assert.Equal(t, "0xabc", errBody.TxRef)
	assert.Equal(t, []bool{false}, e.chain.confirmed, "sin body no hay confirmación")

	status, body = e.call(t, http.MethodGet, "/api/products/"+p.LocalID, prodTok, nil)
	require.Equal(t, http.StatusOK, status)
	got := decodeProduct(t, body)
	assert.Equal(t, "pending", got.Status)
	require.NotNil(t, got.PendingTx)
	assert.Equal(t, "0xabc", got.PendingTx.TxRef)

	// Con la transacción en vuelo el retiro no borra.
	status, _ = e.call(t, http.MethodDelete, "/api/products/"+p.LocalID, prodTok, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = e.call(t, http.MethodGet, "/api/products/"+p.LocalID, prodTok, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestProducts_RetirarPending(t *testing.T) {
	e := newAPI(t)
	_, prodTok, _, _ := e.withAccounts(t)
	p := e.propose(t, prodTok)

	status, _ := e.call(t, http.MethodDelete, "/api/products/"+p.LocalID, prodTok, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body := e.call(t, http.MethodGet, "/api/products/"+p.LocalID, prodTok, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "NOT_FOUND")
}

func TestProducts_HistorialYCertificado(t *testing.T) {
	e := newAPI(t)
	_, prodTok, provTok, _ := e.withAccounts(t)
	p := e.propose(t, prodTok)

	status, body := e.call(t, http.MethodGet, "/api/products/"+p.LocalID+"/history", provTok, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(body), "NOT_REGISTERED")

	e.chain.registerRes = ports.Registration{TxRef: "0xreg", AssignedID: 3}
	status, _ = e.call(t, http.MethodPost, "/api/products/"+p.LocalID+"/publish?confirm=true", prodTok, nil)
	require.Equal(t, http.StatusOK, status)

	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	e.chain.history = []entity.TransferEvent{
		{From: "0x00000000000000000000000000000000000000b1", To: "0x00000000000000000000000000000000000000b2", Role: "supplier", Timestamp: ts},
	}
	status, body = e.call(t, http.MethodGet, "/api/products/"+p.LocalID+"/history", provTok, nil)
	require.Equal(t, http.StatusOK, status)
	var events []map[string]any
	require.NoError(t, json.Unmarshal(body, &events))
	require.Len(t, events, 1)
	assert.Equal(t, "supplier", events[0]["role"])

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+p.LocalID+"/certificate", nil)
	req.Header.Set("Authorization", "Bearer "+provTok)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "certificado_3.pdf")
	pdf, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

// ─── Wallet, contratos y paneles ──────────────────────────────────────────────

func TestWallet_ConnectRequiereConfirmacion(t *testing.T) {
	e := newAPI(t)
	_, _, provTok, _ := e.withAccounts(t)

	status, body := e.call(t, http.MethodGet, "/api/wallet/connect", provTok, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(body), "USER_REJECTED")

	status, body = e.call(t, http.MethodGet, "/api/wallet/connect?confirm=true", provTok, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var w struct {
		NetworkID string `json:"networkId"`
		Contract  string `json:"contract"`
	}
	require.NoError(t, json.Unmarshal(body, &w))
	assert.Equal(t, testNetwork, w.NetworkID)
	assert.Equal(t, testContract, w.Contract)
}

func TestNetworks_SetContractSoloAdmin(t *testing.T) {
	e := newAPI(t)
	adminTok, prodTok, _, _ := e.withAccounts(t)
	addr := "0x00000000000000000000000000000000000000dd"

	status, _ := e.call(t, http.MethodPut, "/api/networks/0x1/contract", prodTok, map[string]string{"address": addr})
	assert.Equal(t, http.StatusForbidden, status)

	status, body := e.call(t, http.MethodPut, "/api/networks/0x1/contract", adminTok, map[string]string{"address": addr})
	require.Equal(t, http.StatusOK, status, string(body))

	_, body = e.call(t, http.MethodGet, "/api/networks/contracts", prodTok, nil)
	var book struct {
		Contracts map[string]string `json:"contracts"`
	}
	require.NoError(t, json.Unmarshal(body, &book))
	assert.Len(t, book.Contracts, 2)
}

func TestViews_SoloElPropioRol(t *testing.T) {
	e := newAPI(t)
	adminTok, prodTok, _, _ := e.withAccounts(t)
	e.propose(t, prodTok)

	status, body := e.call(t, http.MethodGet, "/api/views/producer", prodTok, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var v struct {
		Pending []map[string]any `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Len(t, v.Pending, 1)

	status, _ = e.call(t, http.MethodGet, "/api/views/supplier", prodTok, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = e.call(t, http.MethodGet, "/api/views/supplier", adminTok, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = e.call(t, http.MethodGet, "/api/views/bodeguero", adminTok, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProducts_SinContratoDevuelve412(t *testing.T) {
	e := newAPI(t)
	adminTok, prodTok, _, _ := e.withAccounts(t)
	p := e.propose(t, prodTok)

	status, _ := e.call(t, http.MethodPut, "/api/networks/"+testNetwork+"/contract", adminTok, map[string]string{"address": ""})
	require.Equal(t, http.StatusOK, status)

	status, body := e.call(t, http.MethodPost, "/api/products/"+p.LocalID+"/publish?confirm=true", prodTok, nil)
	assert.Equal(t, http.StatusPreconditionFailed, status)
	assert.Contains(t, string(body), "CONTRACT_UNSET")
	assert.Empty(t, e.chain.confirmed, "no se llega al ledger")

	// Alta y retiro locales no dependen del contrato.
	status, _ = e.call(t, http.MethodDelete, "/api/products/"+p.LocalID, prodTok, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestChain_InspectIdInvalido(t *testing.T) {
	e := newAPI(t)
	_, prodTok, _, _ := e.withAccounts(t)

	status, _ := e.call(t, http.MethodGet, "/api/chain/products/abc", prodTok, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
