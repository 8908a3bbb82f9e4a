package execution_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/dto"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/application/execution"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/governance"
	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/infrastructure/memory"
	"github.com/hnrm110901-cell/zhilian-os-sub006/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test
// ──────────────────────────────────────────────────────────────────────────────

// stubHandler handler de negocio configurable: cuenta invocaciones y puede
// fallar a demanda.
type stubHandler struct {
	mu              sync.Mutex
	executeCalls    int
	compensateCalls int
	executeErr      error
	compensateErr   error
}

func (h *stubHandler) Execute(_ context.Context, _ map[string]any, _ entity.Actor) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.executeCalls++
	return h.executeErr
}

func (h *stubHandler) Compensate(_ context.Context, _ map[string]any, _ entity.Actor) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.compensateCalls++
	return h.compensateErr
}

func (h *stubHandler) calls() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.executeCalls, h.compensateCalls
}

// recordingNotifier captura los eventos publicados.
type recordingNotifier struct {
	mu     sync.Mutex
	events []execution.NotifyEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev execution.NotifyEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *recordingNotifier) captured() []execution.NotifyEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]execution.NotifyEvent(nil), n.events...)
}

type fixture struct {
	exec     *execution.Executor
	records  *memory.ExecutionRecordRepo
	handler  *stubHandler
	notifier *recordingNotifier
}

// newFixture arma un ejecutor con el catálogo por defecto, un stubHandler
// compartido para todos los comandos y un ledger en memoria.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg, err := governance.NewCommandRegistry(governance.DefaultCatalog())
	require.NoError(t, err)

	handler := &stubHandler{}
	handlers := execution.NewHandlerRegistry()
	for _, ct := range reg.CommandTypes() {
		require.NoError(t, handlers.Register(ct, handler))
	}
	require.NoError(t, handlers.EnsureCovers(reg))

	records := memory.NewExecutionRecordRepository()
	notifier := &recordingNotifier{}
	exec := execution.NewExecutor(reg, handlers, records, notifier, logger.Nop())
	return &fixture{exec: exec, records: records, handler: handler, notifier: notifier}
}

func storeManager() entity.Actor {
	return entity.Actor{UserID: "u-mgr", Role: entity.RoleStoreManager, StoreID: "store-1", BrandID: "brand-1"}
}

func allRecords(t *testing.T, f *fixture) []dto.ExecutionRecordDTO {
	t.Helper()
	uc := execution.NewAuditQueryUseCase(f.records)
	recs, err := uc.Query(context.Background(), dto.AuditLogQuery{PageRequest: dto.PageRequest{Limit: 100}})
	require.NoError(t, err)
	return recs
}

// ──────────────────────────────────────────────────────────────────────────────
// Execute: clasificación, permisos y auditoría.
// ──────────────────────────────────────────────────────────────────────────────

// TestExecute_AutoCompletaConRegistro shift_report (AUTO, sin breaker) ejecuta
// y deja exactamente un registro completed con execution_id no vacío.
func TestExecute_AutoCompletaConRegistro(t *testing.T) {
	f := newFixture(t)

	res, err := f.exec.Execute(context.Background(), "shift_report", map[string]any{"turno": "noche"}, storeManager())
	require.NoError(t, err)
	assert.Equal(t, execution.StatusCompleted, res.Status)
	assert.NotEmpty(t, res.ExecutionID)
	assert.Equal(t, entity.LevelAuto, res.Level)

	execCalls, _ := f.handler.calls()
	assert.Equal(t, 1, execCalls)

	recs := allRecords(t, f)
	require.Len(t, recs, 1)
	assert.Equal(t, res.ExecutionID, recs[0].ExecutionID)
	assert.Equal(t, string(entity.StatusCompleted), recs[0].Status)
	assert.NotEmpty(t, recs[0].Seal)
}

// TestExecute_ApproveSiemprePendiente un comando APPROVE nunca ejecuta el
// efecto ni escribe registro, para cualquier monto.
func TestExecute_ApproveSiemprePendiente(t *testing.T) {
	f := newFixture(t)

	for _, amount := range []any{nil, float64(1), float64(200), float64(100_000)} {
		payload := map[string]any{}
		if amount != nil {
			payload["amount"] = amount
		}
		res, err := f.exec.Execute(context.Background(), "discount_apply", payload, storeManager())
		require.NoError(t, err)
		assert.Equal(t, execution.StatusPendingApproval, res.Status)
		assert.Empty(t, res.ExecutionID)
	}

	execCalls, _ := f.handler.calls()
	assert.Zero(t, execCalls, "APPROVE no debe despachar el efecto")
	assert.Empty(t, allRecords(t, f), "APPROVE no deja registro en el ledger")
}

// TestExecute_BreakerEscalaAAprobacion inventory_adjust es NOTIFY con umbral
// 1000: por debajo ejecuta, por encima queda pendiente de aprobación y el
// motivo menciona el breaker.
func TestExecute_BreakerEscalaAAprobacion(t *testing.T) {
	f := newFixture(t)
	actor := storeManager()

	res, err := f.exec.Execute(context.Background(), "inventory_adjust", map[string]any{"amount": float64(999)}, actor)
	require.NoError(t, err)
	assert.Equal(t, execution.StatusCompleted, res.Status)

	res, err = f.exec.Execute(context.Background(), "inventory_adjust", map[string]any{"amount": float64(1001)}, actor)
	require.NoError(t, err)
	assert.Equal(t, execution.StatusPendingApproval, res.Status)
	assert.Contains(t, res.Reason, "circuit breaker")

	assert.Len(t, allRecords(t, f), 1, "solo la invocación bajo el umbral deja registro")
}

// TestExecute_EscenarioDescuento el escenario completo de discount_apply:
// waiter denegado; store_manager con 200 pendiente por nivel base; con 800 el
// motivo además menciona el breaker (umbral 500).
func TestExecute_EscenarioDescuento(t *testing.T) {
	f := newFixture(t)

	waiter := entity.Actor{UserID: "u-w", Role: entity.RoleWaiter, StoreID: "store-1", BrandID: "brand-1"}
	_, err := f.exec.Execute(context.Background(), "discount_apply", map[string]any{"amount": float64(200)}, waiter)
	var denied *domain.PermissionDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, entity.RoleWaiter, denied.Role)

	res, err := f.exec.Execute(context.Background(), "discount_apply", map[string]any{"amount": float64(200)}, storeManager())
	require.NoError(t, err)
	assert.Equal(t, execution.StatusPendingApproval, res.Status)
	assert.NotContains(t, res.Reason, "circuit breaker")

	res, err = f.exec.Execute(context.Background(), "discount_apply", map[string]any{"amount": float64(800)}, storeManager())
	require.NoError(t, err)
	assert.Equal(t, execution.StatusPendingApproval, res.Status)
	assert.Contains(t, res.Reason, "circuit breaker")
}

// TestExecute_SuperAdminPasaPermisosPeroNoBreaker super_admin omite
// allowed_roles pero sigue sujeto a clasificación y breaker.
func TestExecute_SuperAdminPasaPermisosPeroNoBreaker(t *testing.T) {
	f := newFixture(t)
	root := entity.Actor{UserID: "root", Role: entity.RoleSuperAdmin}

	// shift_report solo habilita managers; super_admin pasa igual
	res, err := f.exec.Execute(context.Background(), "shift_report", map[string]any{}, root)
	require.NoError(t, err)
	assert.Equal(t, execution.StatusCompleted, res.Status)

	// breaker sigue aplicando
	res, err = f.exec.Execute(context.Background(), "inventory_adjust", map[string]any{"amount": float64(5000)}, root)
	require.NoError(t, err)
	assert.Equal(t, execution.StatusPendingApproval, res.Status)
}

func TestExecute_ComandoDesconocido(t *testing.T) {
	f := newFixture(t)
	_, err := f.exec.Execute(context.Background(), "no_such_command", map[string]any{}, storeManager())
	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, domain.CodeUnknownCommand, execErr.Code)
}

// TestExecute_HandlerFallaSinRegistroFantasma si el handler falla, la
// operación falla y el ledger queda intacto: cero registros parciales.
func TestExecute_HandlerFallaSinRegistroFantasma(t *testing.T) {
	f := newFixture(t)
	f.handler.executeErr = errors.New("caja no disponible")

	_, err := f.exec.Execute(context.Background(), "shift_report", map[string]any{}, storeManager())
	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, domain.CodeHandlerFailed, execErr.Code)

	assert.Empty(t, allRecords(t, f))
}

// TestExecute_NotifyPublicaEvento los comandos NOTIFY publican un evento de
// visibilidad; AUTO no.
func TestExecute_NotifyPublicaEvento(t *testing.T) {
	f := newFixture(t)
	actor := storeManager()

	_, err := f.exec.Execute(context.Background(), "shift_report", map[string]any{}, actor)
	require.NoError(t, err)
	assert.Empty(t, f.notifier.captured(), "AUTO no publica")

	res, err := f.exec.Execute(context.Background(), "order_cancel", map[string]any{"order_id": "o1"}, actor)
	require.NoError(t, err)

	events := f.notifier.captured()
	require.Len(t, events, 1)
	assert.Equal(t, execution.EventExecutionCompleted, events[0].EventType)
	assert.Equal(t, res.ExecutionID, events[0].ExecutionID)
}

// TestExecute_FalloDelNotifierNoRompeLaEjecucion la publicación es
// best-effort.
func TestExecute_FalloDelNotifierNoRompeLaEjecucion(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("broker caído")

	res, err := f.exec.Execute(context.Background(), "order_cancel", map[string]any{}, storeManager())
	require.NoError(t, err)
	assert.Equal(t, execution.StatusCompleted, res.Status)
	assert.Len(t, allRecords(t, f), 1)
}

// TestExecute_SnapshotRedactado el snapshot de auditoría nunca conserva
// secretos del payload.
func TestExecute_SnapshotRedactado(t *testing.T) {
	f := newFixture(t)

	payload := map[string]any{
		"order_id":    "o-9",
		"card_number": "4111111111111111",
		"meta":        map[string]any{"api_key": "k-123", "note": "vip"},
	}
	res, err := f.exec.Execute(context.Background(), "order_cancel", payload, storeManager())
	require.NoError(t, err)

	recs := allRecords(t, f)
	require.Len(t, recs, 1)
	require.Equal(t, res.ExecutionID, recs[0].ExecutionID)
	snap := recs[0].PayloadSnapshot
	assert.Equal(t, "[REDACTED]", snap["card_number"])
	assert.Equal(t, "o-9", snap["order_id"])
	nested, ok := snap["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "[REDACTED]", nested["api_key"])
	assert.Equal(t, "vip", nested["note"])
}

// TestExecute_MontoInvalido un amount no numérico es INVALID_PAYLOAD, no un
// pánico ni un bypass del breaker.
func TestExecute_MontoInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.exec.Execute(context.Background(), "inventory_adjust", map[string]any{"amount": "mucho"}, storeManager())
	var execErr *domain.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, domain.CodeInvalidPayload, execErr.Code)
}

// TestExecute_ConcurrenciaSinInterferencia ejecuciones no relacionadas no se
// serializan entre sí ni pierden registros.
func TestExecute_ConcurrenciaSinInterferencia(t *testing.T) {
	f := newFixture(t)
	actor := storeManager()

	const n = 50
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.exec.Execute(context.Background(), "shift_report", map[string]any{"i": i}, actor)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "ejecución %d", i)
	}
	assert.Len(t, allRecords(t, f), n)
}
