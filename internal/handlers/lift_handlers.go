package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"auto_service_backend/internal/liftboard"
	"auto_service_backend/internal/services"
	"auto_service_backend/pkg/utils"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// LiftHandler serves the lift board and its live streams.
type LiftHandler struct {
	liftService services.LiftService
	ticker      *liftboard.Ticker
	upgrader    websocket.Upgrader
}

// NewLiftHandler creates a new LiftHandler. allowedOrigins limits websocket
// upgrades; an empty list accepts any origin.
func NewLiftHandler(ls services.LiftService, ticker *liftboard.Ticker, allowedOrigins []string) *LiftHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &LiftHandler{
		liftService: ls,
		ticker:      ticker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
	}
}

func parseSlotParam(c *gin.Context) (int, bool) {
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil || !liftboard.ValidSlot(slot) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed,
			"Invalid lift slot.", "slot must be between 0 and "+strconv.Itoa(liftboard.SlotCount-1)))
		return 0, false
	}
	return slot, true
}

func respondLiftError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, liftboard.ErrInvalidSlot):
		utils.RespondValidationFailed(c, err.Error())
	case errors.Is(err, liftboard.ErrSlotOccupied), errors.Is(err, liftboard.ErrAlreadyAssigned):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Lift is occupied.", err.Error()))
	case errors.Is(err, liftboard.ErrSlotEmpty):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Lift is empty.", err.Error()))
	default:
		respondOrderError(c, err, message)
	}
}

func (h *LiftHandler) ListLifts(c *gin.Context) {
	lifts, err := h.liftService.ListLifts(c.Request.Context())
	if err != nil {
		respondLiftError(c, err, "Failed to load lifts.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lifts})
}

// StartService creates an order from the submitted form and puts it on the lift.
func (h *LiftHandler) StartService(c *gin.Context) {
	slot, ok := parseSlotParam(c)
	if !ok {
		return
	}
	var draft services.OrderDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload", err.Error()))
		return
	}
	view, err := h.liftService.StartService(c.Request.Context(), slot, draft)
	if err != nil {
		respondLiftError(c, err, "Failed to start service.")
		return
	}
	c.JSON(http.StatusCreated, view)
}

// CompleteService records the time spent on the lift and frees it.
func (h *LiftHandler) CompleteService(c *gin.Context) {
	slot, ok := parseSlotParam(c)
	if !ok {
		return
	}
	done, err := h.liftService.CompleteService(c.Request.Context(), slot)
	if err != nil {
		respondLiftError(c, err, "Failed to complete service.")
		return
	}
	c.JSON(http.StatusOK, done)
}

// BoardStream pushes the lift board on connect and after every change.
func (h *LiftHandler) BoardStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.LogWarn("Lift board websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.Close()

	updates, cancel := h.liftService.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(c.Request.Context())
	defer stop()
	go readUntilClosed(conn, stop)

	send := func() bool {
		lifts, err := h.liftService.ListLifts(ctx)
		if err != nil {
			utils.LogError(err, "Lift board stream: loading lifts")
			return true
		}
		return writeJSON(conn, gin.H{"data": lifts}) == nil
	}
	if !send() {
		return
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok || !send() {
				return
			}
		case <-ping.C:
			if writePing(conn) != nil {
				return
			}
		}
	}
}

type timerMessage struct {
	Slot           int   `json:"slot"`
	Occupied       bool  `json:"occupied"`
	ElapsedSeconds int64 `json:"elapsed_seconds"`
}

// TimerStream sends the elapsed seconds of one lift once per second. When the
// lift is empty, or is cleared or taken by another order while streaming, it
// sends a single zero and closes the connection.
func (h *LiftHandler) TimerStream(c *gin.Context) {
	slot, ok := parseSlotParam(c)
	if !ok {
		return
	}
	updates, cancel := h.liftService.Subscribe()
	defer cancel()

	held, err := h.liftService.SlotState(c.Request.Context(), slot)
	if err != nil {
		respondLiftError(c, err, "Failed to load lift.")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.LogWarn("Lift timer websocket upgrade failed", map[string]interface{}{"error": err.Error(), "slot": slot})
		return
	}
	defer conn.Close()

	if held == nil {
		closeEmptyTimer(conn, slot)
		return
	}

	ctx, stop := context.WithCancel(c.Request.Context())
	defer stop()
	go readUntilClosed(conn, stop)

	elapsed := h.ticker.Watch(ctx, held.StartTime)
	for {
		select {
		case <-ctx.Done():
			return
		case secs, ok := <-elapsed:
			if !ok {
				return
			}
			if writeJSON(conn, timerMessage{Slot: slot, Occupied: true, ElapsedSeconds: secs}) != nil {
				return
			}
		case board, ok := <-updates:
			if !ok {
				return
			}
			if cur := board.At(slot); cur == nil || cur.OrderID != held.OrderID {
				stop()
				closeEmptyTimer(conn, slot)
				return
			}
		}
	}
}

func closeEmptyTimer(conn *websocket.Conn, slot int) {
	if writeJSON(conn, timerMessage{Slot: slot}) != nil {
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "lift is empty"),
		time.Now().Add(wsWriteWait))
}

// readUntilClosed drains client frames so pongs and close frames are handled,
// and calls stop once the peer goes away.
func readUntilClosed(conn *websocket.Conn, stop context.CancelFunc) {
	defer stop()
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeJSON(conn *websocket.Conn, v interface{}) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(v)
}

func writePing(conn *websocket.Conn) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteMessage(websocket.PingMessage, nil)
}
