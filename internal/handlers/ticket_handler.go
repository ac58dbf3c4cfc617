package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ArowuTest/luckyticket-backend/internal/middleware"
	"github.com/ArowuTest/luckyticket-backend/internal/models"
	"github.com/ArowuTest/luckyticket-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// TicketHandler handles lucky ticket HTTP requests
type TicketHandler struct {
	ticketService *services.TicketService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ticketService *services.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// GenerateTicket handles POST /luckyticket/generate
func (h *TicketHandler) GenerateTicket(c *gin.Context) {
	var req models.GenerateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid reward amount"})
		return
	}

	ticket, err := h.ticketService.Generate(c.Request.Context(), req.Reward)
	if errors.Is(err, services.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid reward amount"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    ticket,
	})
}

// GetTickets handles GET /luckyticket/list
func (h *TicketHandler) GetTickets(c *gin.Context) {
	page, limit := pagination(c)
	tickets, err := h.ticketService.ListTickets(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// RedeemTicket handles POST /luckyticket/redeem
func (h *TicketHandler) RedeemTicket(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	var req models.RedeemTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide code"})
		return
	}

	result, err := h.ticketService.Redeem(c.Request.Context(), req.Code, userID)
	if errors.Is(err, services.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide a valid code"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Success! You earned %d points", result.Ticket.Reward),
		"data":    result,
	})
}

// GetAvailableTickets handles GET /luckyticket/available
func (h *TicketHandler) GetAvailableTickets(c *gin.Context) {
	page, limit := pagination(c)
	tickets, err := h.ticketService.ListAvailable(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// GetUserTickets handles GET /luckyticket/my-tickets
func (h *TicketHandler) GetUserTickets(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	page, limit := pagination(c)
	tickets, err := h.ticketService.ListRedeemedBy(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}
