package dashboard

import (
	"github.com/SarthakJain2/monitord/internal/httpx"
	"github.com/SarthakJain2/monitord/internal/server"
	"github.com/SarthakJain2/monitord/internal/wsproto"
)

// WSHandler returns a server.WSHandler that registers each upgraded
// connection with hub for the lifetime of the socket. Browsers only
// receive broadcasts here; any frame they send is read and discarded, just
// enough to notice the connection closing.
func WSHandler(hub *Hub) server.WSHandler {
	return func(conn *server.WSConn, _ *httpx.Request) {
		hub.Register(conn)
		defer hub.Unregister(conn)

		var buf []byte
		for {
			frame, err := conn.ReadFrame(&buf)
			if err != nil {
				return
			}
			if frame.Opcode == wsproto.OpClose {
				return
			}
		}
	}
}
