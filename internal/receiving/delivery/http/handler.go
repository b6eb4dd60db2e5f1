package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
	"github.com/wareline/warehouse-receiving/internal/receiving/usecase/command"
	"github.com/wareline/warehouse-receiving/internal/receiving/usecase/query"
	"github.com/wareline/warehouse-receiving/pkg/logger"
)

// ReceivingHandler handles HTTP requests for the receiving workflow.
type ReceivingHandler struct {
	// Command handlers
	startSessionHandler    *command.StartSessionHandler
	receiveItemHandler     *command.ReceiveItemHandler
	completeSessionHandler *command.CompleteSessionHandler
	decideItemHandler      *command.DecideItemHandler
	resolveHandler         *command.ResolveDiscrepancyHandler
	recordScanHandler      *command.RecordScanHandler
	placeStockHandler      *command.PlaceStockHandler

	// Query handlers
	getSessionHandler    *query.GetSessionHandler
	expectedItemsHandler *query.GetExpectedItemsHandler
	discrepanciesHandler *query.ListDiscrepanciesHandler
	relocationsHandler   *query.ListRelocationTasksHandler
}

// NewReceivingHandler creates a new receiving handler.
func NewReceivingHandler(uow domain.UnitOfWork, store domain.Store, audit command.AuditPublisher) *ReceivingHandler {
	return &ReceivingHandler{
		startSessionHandler:    command.NewStartSessionHandler(uow),
		receiveItemHandler:     command.NewReceiveItemHandler(uow, audit),
		completeSessionHandler: command.NewCompleteSessionHandler(uow),
		decideItemHandler:      command.NewDecideItemHandler(uow, audit),
		resolveHandler:         command.NewResolveDiscrepancyHandler(uow),
		recordScanHandler:      command.NewRecordScanHandler(uow),
		placeStockHandler:      command.NewPlaceStockHandler(uow),
		getSessionHandler:      query.NewGetSessionHandler(store),
		expectedItemsHandler:   query.NewGetExpectedItemsHandler(store),
		discrepanciesHandler:   query.NewListDiscrepanciesHandler(store),
		relocationsHandler:     query.NewListRelocationTasksHandler(store),
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// StartSession handles POST /api/receiving/sessions
func (h *ReceivingHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PurchaseOrderID uint       `json:"purchase_order_id"`
		DocumentNumber  string     `json:"document_number"`
		DocumentType    string     `json:"document_type"`
		DocumentDate    *time.Time `json:"document_date"`
		OperatorID      uint       `json:"operator_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	session, err := h.startSessionHandler.Handle(r.Context(), command.StartSessionCommand{
		PurchaseOrderID: req.PurchaseOrderID,
		DocumentNumber:  req.DocumentNumber,
		DocumentType:    req.DocumentType,
		DocumentDate:    req.DocumentDate,
		OperatorID:      req.OperatorID,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Receiving session started",
		Data:    session,
	})
}

// ReceiveItem handles POST /api/receiving/sessions/{id}/items
func (h *ReceivingHandler) ReceiveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "id", "session")
	if !ok {
		return
	}

	var req struct {
		PurchaseOrderItemID uint            `json:"purchase_order_item_id"`
		ReceivedQuantity    decimal.Decimal `json:"received_quantity"`
		ConditionStatus     string          `json:"condition_status"`
		LocationHintID      *uint           `json:"location_hint_id"`
		BatchNumber         *string         `json:"batch_number"`
		ExpiryDate          *time.Time      `json:"expiry_date"`
		TrackingMethod      string          `json:"tracking_method"`
		OperatorID          uint            `json:"operator_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	result, err := h.receiveItemHandler.Handle(r.Context(), command.ReceiveItemCommand{
		SessionID:           sessionID,
		PurchaseOrderItemID: req.PurchaseOrderItemID,
		ReceivedQuantity:    req.ReceivedQuantity,
		ConditionStatus:     req.ConditionStatus,
		LocationHintID:      req.LocationHintID,
		BatchNumber:         req.BatchNumber,
		ExpiryDate:          req.ExpiryDate,
		TrackingMethod:      req.TrackingMethod,
		OperatorID:          req.OperatorID,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	status := http.StatusCreated
	message := "Item received"
	if result.Updated {
		status = http.StatusOK
		message = "Item receipt corrected"
	}
	respondJSON(w, status, Response{
		Success: true,
		Message: message,
		Data:    result,
	})
}

// CompleteSession handles POST /api/receiving/sessions/{id}/complete
func (h *ReceivingHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "id", "session")
	if !ok {
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondJSON(w, http.StatusBadRequest, Response{
				Success: false,
				Error:   "Invalid request body",
			})
			return
		}
	}

	result, err := h.completeSessionHandler.Handle(r.Context(), command.CompleteSessionCommand{
		SessionID: sessionID,
		Notes:     req.Notes,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Session completed",
		Data:    result,
	})
}

// GetSession handles GET /api/receiving/sessions/{id}
func (h *ReceivingHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "id", "session")
	if !ok {
		return
	}

	view, err := h.getSessionHandler.Handle(r.Context(), sessionID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    view,
	})
}

// GetExpectedItems handles GET /api/receiving/sessions/{id}/items
func (h *ReceivingHandler) GetExpectedItems(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "id", "session")
	if !ok {
		return
	}

	views, err := h.expectedItemsHandler.Handle(r.Context(), sessionID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    views,
	})
}

// ListDiscrepancies handles GET /api/receiving/sessions/{id}/discrepancies
func (h *ReceivingHandler) ListDiscrepancies(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "id", "session")
	if !ok {
		return
	}

	discrepancies, err := h.discrepanciesHandler.Handle(r.Context(), sessionID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    discrepancies,
	})
}

// DecideItem handles POST /api/receiving/sessions/{id}/items/{itemID}/decision
func (h *ReceivingHandler) DecideItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "id", "session")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID", "item")
	if !ok {
		return
	}

	var req struct {
		Decision     string `json:"decision"`
		Note         string `json:"note"`
		SupervisorID uint   `json:"supervisor_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	result, err := h.decideItemHandler.Handle(r.Context(), command.DecideItemCommand{
		SessionID:    sessionID,
		ItemID:       itemID,
		Decision:     req.Decision,
		Note:         req.Note,
		SupervisorID: req.SupervisorID,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Decision recorded",
		Data:    result,
	})
}

// ResolveDiscrepancy handles POST /api/receiving/discrepancies/{id}/resolve
func (h *ReceivingHandler) ResolveDiscrepancy(w http.ResponseWriter, r *http.Request) {
	discrepancyID, ok := pathID(w, r, "id", "discrepancy")
	if !ok {
		return
	}

	var req struct {
		Note string `json:"note"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	discrepancy, err := h.resolveHandler.Handle(r.Context(), command.ResolveDiscrepancyCommand{
		DiscrepancyID: discrepancyID,
		Note:          req.Note,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Discrepancy resolved",
		Data:    discrepancy,
	})
}

// RecordScan handles POST /api/receiving/barcode-tasks/{id}/scan
func (h *ReceivingHandler) RecordScan(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id", "barcode task")
	if !ok {
		return
	}

	var req struct {
		ScannedQuantity int  `json:"scanned_quantity"`
		Completed       bool `json:"completed"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	task, err := h.recordScanHandler.Handle(r.Context(), command.RecordScanCommand{
		TaskID:          taskID,
		ScannedQuantity: req.ScannedQuantity,
		Completed:       req.Completed,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Scan progress recorded",
		Data:    task,
	})
}

// PlaceStock handles POST /api/placement/resolve
func (h *ReceivingHandler) PlaceStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID      uint            `json:"product_id"`
		Quantity       decimal.Decimal `json:"quantity"`
		LocationHintID *uint           `json:"location_hint_id"`
		DryRun         bool            `json:"dry_run"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	result, err := h.placeStockHandler.Handle(r.Context(), command.PlaceStockCommand{
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		LocationHintID: req.LocationHintID,
		DryRun:         req.DryRun,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// ListRelocationTasks handles GET /api/placement/relocations
func (h *ReceivingHandler) ListRelocationTasks(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	tasks, err := h.relocationsHandler.Handle(r.Context(), limit, offset)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    tasks,
	})
}

// RegisterRoutes registers all receiving routes
func (h *ReceivingHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/receiving/sessions", MetricsMiddleware("/api/receiving/sessions", h.StartSession)).Methods("POST")
	router.HandleFunc("/api/receiving/sessions/{id}", MetricsMiddleware("/api/receiving/sessions/{id}", h.GetSession)).Methods("GET")
	router.HandleFunc("/api/receiving/sessions/{id}/items", MetricsMiddleware("/api/receiving/sessions/{id}/items", h.ReceiveItem)).Methods("POST")
	router.HandleFunc("/api/receiving/sessions/{id}/items", MetricsMiddleware("/api/receiving/sessions/{id}/items", h.GetExpectedItems)).Methods("GET")
	router.HandleFunc("/api/receiving/sessions/{id}/complete", MetricsMiddleware("/api/receiving/sessions/{id}/complete", h.CompleteSession)).Methods("POST")
	router.HandleFunc("/api/receiving/sessions/{id}/discrepancies", MetricsMiddleware("/api/receiving/sessions/{id}/discrepancies", h.ListDiscrepancies)).Methods("GET")
	router.HandleFunc("/api/receiving/sessions/{id}/items/{itemID}/decision", MetricsMiddleware("/api/receiving/sessions/{id}/items/{itemID}/decision", h.DecideItem)).Methods("POST")
	router.HandleFunc("/api/receiving/discrepancies/{id}/resolve", MetricsMiddleware("/api/receiving/discrepancies/{id}/resolve", h.ResolveDiscrepancy)).Methods("POST")
	router.HandleFunc("/api/receiving/barcode-tasks/{id}/scan", MetricsMiddleware("/api/receiving/barcode-tasks/{id}/scan", h.RecordScan)).Methods("POST")
	router.HandleFunc("/api/placement/resolve", MetricsMiddleware("/api/placement/resolve", h.PlaceStock)).Methods("POST")
	router.HandleFunc("/api/placement/relocations", MetricsMiddleware("/api/placement/relocations", h.ListRelocationTasks)).Methods("GET")
}

// RegisterHealthCheck registers the health check endpoint
func (h *ReceivingHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Receiving service is healthy",
		})
	}).Methods("GET")
}

// pathID parses a positive integer path variable, responding 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name, entity string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid " + entity + " ID",
		})
		return 0, false
	}
	return uint(id), true
}

// respondDomainError maps the domain error taxonomy onto HTTP statuses. A
// conflict carrying an existing session returns it in Data so the client
// can offer to resume.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		conflictErr   *domain.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   validationErr.Error(),
		})
	case errors.As(err, &notFoundErr):
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   notFoundErr.Error(),
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "Not found",
		})
	case errors.As(err, &conflictErr):
		resp := Response{
			Success: false,
			Error:   conflictErr.Error(),
		}
		if conflictErr.ExistingSession != nil {
			resp.Data = conflictErr.ExistingSession
		}
		respondJSON(w, http.StatusConflict, resp)
	default:
		logger.Error(r.Context()).Err(err).Msg("Request failed")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Internal server error",
		})
	}
}

func respondJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
