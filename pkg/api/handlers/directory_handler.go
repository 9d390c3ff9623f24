package handlers

import (
	"log/slog"
	"net/http"

	"github.com/HannahMarsh/onionnet/internal/api/api_functions"
	"github.com/HannahMarsh/onionnet/internal/api/structs"
	"github.com/HannahMarsh/onionnet/internal/usecases"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

type DirectoryHandler struct {
	service *usecases.DirectoryService
}

func NewDirectoryHandler(service *usecases.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

// Routes mounts the directory endpoints on r.
func (h *DirectoryHandler) Routes(r *mux.Router) {
	r.HandleFunc("/status", api_functions.HandleStatus).Methods(http.MethodGet)
	r.HandleFunc("/registerNode", h.RegisterNode).Methods(http.MethodPost)
	r.HandleFunc("/getNodeRegistry", h.GetNodeRegistry).Methods(http.MethodGet)
}

func (h *DirectoryHandler) RegisterNode(w http.ResponseWriter, r *http.Request) {
	var node structs.PublicNodeApi
	if err := api_functions.ReadJSON(r, &node); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	created, err := h.service.RegisterNode(r.Context(), node.ToNodeIdentity())
	switch {
	case errors.Is(err, usecases.ErrNodeConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, usecases.ErrInvalidNode):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		slog.Error("failed to register node", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	case created:
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (h *DirectoryHandler) GetNodeRegistry(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.service.GetNodeRegistry(r.Context())
	if err != nil {
		slog.Error("failed to list nodes", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	registry := structs.NodeRegistryApi{Nodes: make([]structs.PublicNodeApi, 0, len(nodes))}
	for _, node := range nodes {
		registry.Nodes = append(registry.Nodes, structs.NewPublicNodeApi(node))
	}
	api_functions.WriteJSON(w, http.StatusOK, registry)
}
