package handler

import (
	"net"
	"net/http"

	udp "netdebug/internal/microservices/udp-server"

	"github.com/gin-gonic/gin"
)

// ResponderStatus is what the admin endpoint reads from the running responder.
type ResponderStatus interface {
	State() udp.State
	Stats() udp.Snapshot
	LocalAddr() *net.UDPAddr
	DestAddr() *net.UDPAddr
}

type AdminHandler struct {
	responder ResponderStatus
}

func NewAdminHandler(responder ResponderStatus) *AdminHandler {
	return &AdminHandler{responder: responder}
}

// Health godoc
// GET /healthz
// 200 while the loop runs, 503 once the socket is closed.
func (h *AdminHandler) Health(c *gin.Context) {
	state := h.responder.State()
	status := http.StatusOK
	if state == udp.StateClosed {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"state": state.String(),
		"bind":  h.responder.LocalAddr().String(),
		"dest":  h.responder.DestAddr().String(),
	})
}

// Stats godoc
// GET /stats
func (h *AdminHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.responder.Stats())
}

func (h *AdminHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/healthz", h.Health)
	r.GET("/stats", h.Stats)
}
