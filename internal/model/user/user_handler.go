package user

import (
	"net/http"

	"github.com/HannahMarsh/onionnet/internal/api/api_functions"
	"github.com/HannahMarsh/onionnet/internal/api/structs"
	"github.com/HannahMarsh/onionnet/internal/circuit"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// Routes mounts the user endpoints on r.
func (u *User) Routes(r *mux.Router) {
	r.HandleFunc("/status", api_functions.HandleStatus).Methods(http.MethodGet)
	r.HandleFunc("/message", u.HandleReceive).Methods(http.MethodPost)
	r.HandleFunc("/sendMessage", u.HandleSendMessage).Methods(http.MethodPost)
	r.HandleFunc("/getStatus", u.HandleGetStatus).Methods(http.MethodGet)
	r.HandleFunc("/getMessages", u.HandleGetMessages).Methods(http.MethodGet)
	r.HandleFunc("/getLastReceivedMessage", u.HandleGetLastReceivedMessage).Methods(http.MethodGet)
	r.HandleFunc("/getLastSentMessage", u.HandleGetLastSentMessage).Methods(http.MethodGet)
	r.HandleFunc("/getLastCircuit", u.HandleGetLastCircuit).Methods(http.MethodGet)
}

// HandleReceive is where exit relays deliver plaintexts.
func (u *User) HandleReceive(w http.ResponseWriter, r *http.Request) {
	var msg structs.MessageApi
	if err := api_functions.ReadJSON(r, &msg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := u.Deliver(r.Context(), msg.Message); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (u *User) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req structs.SendMessageApi
	if err := api_functions.ReadJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ids, err := u.SendMessage(r.Context(), req.Message, req.DestinationUserID)
	switch {
	case errors.Is(err, circuit.ErrInsufficientRelays), errors.Is(err, circuit.ErrInvalidLength):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		api_functions.WriteJSON(w, http.StatusOK, structs.SendResultApi{Circuit: ids})
	}
}

func (u *User) HandleGetStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(u.GetStatus()))
}

func (u *User) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := u.Messages(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	api_functions.WriteResult(w, msgs)
}

func (u *User) HandleGetLastReceivedMessage(w http.ResponseWriter, r *http.Request) {
	last, err := u.LastMessage(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	api_functions.WriteResult(w, last)
}

func (u *User) HandleGetLastSentMessage(w http.ResponseWriter, _ *http.Request) {
	api_functions.WriteResult(w, u.status.GetLastSentMessage())
}

func (u *User) HandleGetLastCircuit(w http.ResponseWriter, _ *http.Request) {
	api_functions.WriteResult(w, u.status.GetLastCircuit())
}
