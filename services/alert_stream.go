package services

import (
	"log"
	"sync"
	"time"

	"surveillance-center/backend/models"

	"github.com/gorilla/websocket"
)

const streamWriteTimeout = 10 * time.Second

// AlertStreamService fans out newly created alerts to dashboard websocket
// clients. Connections are grouped by user; a client only ever receives
// alerts for cameras that user owns.
type AlertStreamService struct {
	clients map[uint]map[*websocket.Conn]bool // user_id -> connections
	mu      sync.RWMutex
}

func NewAlertStreamService() *AlertStreamService {
	return &AlertStreamService{
		clients: make(map[uint]map[*websocket.Conn]bool),
	}
}

// Register adds a client connection for a user.
func (s *AlertStreamService) Register(userID uint, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clients[userID] == nil {
		s.clients[userID] = make(map[*websocket.Conn]bool)
	}
	s.clients[userID][conn] = true
	log.Printf("Alert stream client connected for user %d (%d total)", userID, len(s.clients[userID]))
}

// Unregister removes a client connection and closes it.
func (s *AlertStreamService) Unregister(userID uint, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conns, exists := s.clients[userID]; exists {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(s.clients, userID)
		}
	}
	conn.Close()
}

// Broadcast sends an alert to every connection of the camera's owner.
// Connections that fail to accept the write are dropped.
func (s *AlertStreamService) Broadcast(ownerID uint, alert *models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conns := s.clients[ownerID]
	if len(conns) == 0 {
		return
	}

	for conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(alert); err != nil {
			log.Printf("Alert stream write failed for user %d, dropping client: %v", ownerID, err)
			delete(conns, conn)
			conn.Close()
		}
	}
	if len(conns) == 0 {
		delete(s.clients, ownerID)
	}
}

// ClientCount reports connected clients for a user.
func (s *AlertStreamService) ClientCount(userID uint) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients[userID])
}
