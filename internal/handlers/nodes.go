package handlers

import (
	"log/slog"
	"net/http"

	"github.com/JNickson/cluster-health-api/internal/nodes"
	"github.com/JNickson/cluster-health-api/internal/utils"
)

func NodesHandler(svc nodes.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nodes, err := svc.FetchNodes(r.Context())
		if err != nil {
			slog.Error("failed to collect nodes", "error", err)
			WriteError(w, r, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
			return
		}

		utils.WriteJSON(w, http.StatusOK, nodes)
	}
}
