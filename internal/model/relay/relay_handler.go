package relay

import (
	"net/http"

	"github.com/HannahMarsh/onionnet/internal/api/api_functions"
	"github.com/HannahMarsh/onionnet/internal/api/structs"
	"github.com/gorilla/mux"
)

// Routes mounts the relay endpoints on r.
func (n *Relay) Routes(r *mux.Router) {
	r.HandleFunc("/status", api_functions.HandleStatus).Methods(http.MethodGet)
	r.HandleFunc("/message", n.HandleReceiveOnion).Methods(http.MethodPost)
	r.HandleFunc("/getStatus", n.HandleGetStatus).Methods(http.MethodGet)
	r.HandleFunc("/getLastReceivedEncryptedMessage", n.HandleGetLastReceivedEncryptedMessage).Methods(http.MethodGet)
	r.HandleFunc("/getLastReceivedDecryptedMessage", n.HandleGetLastReceivedDecryptedMessage).Methods(http.MethodGet)
	r.HandleFunc("/getLastMessageDestination", n.HandleGetLastMessageDestination).Methods(http.MethodGet)
	if n.exposePrivateKey {
		r.HandleFunc("/getPrivateKey", n.HandleGetPrivateKey).Methods(http.MethodGet)
	}
}

// HandleReceiveOnion accepts an onion. A well-formed request is answered with
// 200 even if the onion is rejected; the rejection only shows in the log and status.
func (n *Relay) HandleReceiveOnion(w http.ResponseWriter, r *http.Request) {
	api_functions.HandleReceiveOnion(w, r, func(o structs.OnionApi) error {
		n.Receive(r.Context(), o.Message)
		return nil
	})
}

// HandleGetStatus returns the current status of the relay in response to an HTTP request.
func (n *Relay) HandleGetStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(n.GetStatus()))
}

func (n *Relay) HandleGetLastReceivedEncryptedMessage(w http.ResponseWriter, _ *http.Request) {
	api_functions.WriteResult(w, n.status.GetLastReceivedEncrypted())
}

func (n *Relay) HandleGetLastReceivedDecryptedMessage(w http.ResponseWriter, _ *http.Request) {
	api_functions.WriteResult(w, n.status.GetLastReceivedDecrypted())
}

func (n *Relay) HandleGetLastMessageDestination(w http.ResponseWriter, _ *http.Request) {
	api_functions.WriteResult(w, n.status.GetLastDestination())
}

func (n *Relay) HandleGetPrivateKey(w http.ResponseWriter, _ *http.Request) {
	api_functions.WriteResult(w, n.privateKey)
}
