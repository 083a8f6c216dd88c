package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Event types
const (
	EventStockUpdate      = "stock_update"
	EventLowStock         = "low_stock"
	EventMenuAvailability = "menu_availability"
	EventTransactionNew   = "transaction_new"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung semua client dashboard (admin, staff) dan menyiarkan
// event inventori secara real-time.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient -> menambahkan connection ke set dengan role
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient -> melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastStockUpdate -> menyiarkan perubahan quantity stok
func BroadcastStockUpdate(data interface{}) {
	broadcast(Message{
		Event: EventStockUpdate,
		Data:  data,
	})
}

// BroadcastLowStock -> peringatan stok menyentuh threshold (admin only)
func BroadcastLowStock(data interface{}) {
	broadcastToRole("admin", Message{
		Event: EventLowStock,
		Data:  data,
	})
}

// BroadcastMenuAvailability -> flag sellable menu berubah
func BroadcastMenuAvailability(menuID uint, isAvailable bool) {
	broadcast(Message{
		Event: EventMenuAvailability,
		Data: map[string]interface{}{
			"menu_id":      menuID,
			"is_available": isAvailable,
		},
	})
}

// BroadcastTransactionNew -> transaksi baru berhasil dibuat
func BroadcastTransactionNew(data interface{}) {
	broadcast(Message{
		Event: EventTransactionNew,
		Data:  data,
	})
}

func broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("broadcast marshal error: %v", err)
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(hub.clients, conn)
		}
	}
}

func broadcastToRole(role string, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("broadcast marshal error: %v", err)
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	for conn, clientRole := range hub.clients {
		if clientRole != role {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(hub.clients, conn)
		}
	}
}
