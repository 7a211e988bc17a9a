//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package web

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

//
// WEBSOCKET INFRASTRUCTURE: see https://tutorialedge.net/projects/chat-system-in-go-and-react/part-4-handling-multiple-clients/
//

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Progress - what the websocket clients hear after every fit
type Progress struct {
	Batch int `json:"batch"`
	Docs  int `json:"docs"`
	Vocab int `json:"vocab"`
}

type WSClient struct {
	Conn *websocket.Conn
	Pool *WSPool
}

// WSPool - the connected clients; a write to one conn happens only under the lock
type WSPool struct {
	mtx       sync.Mutex
	ClientMap map[*WSClient]bool
}

func NewWSPool() *WSPool {
	return &WSPool{ClientMap: make(map[*WSClient]bool)}
}

func (p *WSPool) Add(c *WSClient) {
	p.mtx.Lock()
	p.ClientMap[c] = true
	p.mtx.Unlock()
}

func (p *WSPool) Remove(c *WSClient) {
	p.mtx.Lock()
	delete(p.ClientMap, c)
	p.mtx.Unlock()
}

// Size - how many clients are listening
func (p *WSPool) Size() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return len(p.ClientMap)
}

// Broadcast - send the progress to everyone; clients that cannot be written to are dropped
func (p *WSPool) Broadcast(pd Progress) {
	const (
		FAIL = "WSPool.Broadcast() dropped a client: %s"
	)
	p.mtx.Lock()
	defer p.mtx.Unlock()
	for c := range p.ClientMap {
		if err := c.Conn.WriteJSON(pd); err != nil {
			Msg.FYI(fmt.Sprintf(FAIL, err.Error()))
			c.Conn.Close()
			delete(p.ClientMap, c)
		}
	}
}

// ReadLoop - the clients say nothing of interest; reading only notices when they leave
func (c *WSClient) ReadLoop() {
	defer func() {
		c.Pool.Remove(c)
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
