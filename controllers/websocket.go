package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// CatalogEvent tells connected viewers that a product's plan or model
// changed and they should refetch.
type CatalogEvent struct {
	Type      string `json:"type"` // "plan_updated" or "model_updated"
	ProductID uint   `json:"product_id"`
}

type feedClient struct {
	conn *websocket.Conn
	// productID filters events to one product; 0 means all.
	productID uint
}

var (
	feedMu      sync.Mutex
	feedClients = make(map[*websocket.Conn]feedClient)
)

// HandleCatalogFeed upgrades the connection and keeps it registered until
// the client goes away. An optional product_id query parameter narrows the
// feed to one product, which is what workstation viewers use.
func HandleCatalogFeed(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	var productID uint
	if v := c.Query("product_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			conn.Close()
			return
		}
		productID = uint(id)
	}

	feedMu.Lock()
	feedClients[conn] = feedClient{conn: conn, productID: productID}
	feedMu.Unlock()
	defer func() {
		feedMu.Lock()
		delete(feedClients, conn)
		feedMu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// BroadcastCatalogEvent sends the event to every connected client whose
// filter matches. Clients that fail to receive are dropped.
func BroadcastCatalogEvent(event CatalogEvent) {
	msg, err := json.Marshal(event)
	if err != nil {
		return
	}

	feedMu.Lock()
	defer feedMu.Unlock()
	for conn, client := range feedClients {
		if client.productID != 0 && client.productID != event.ProductID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.WithError(err).Debug("dropping catalog feed client")
			delete(feedClients, conn)
			conn.Close()
		}
	}
}
