package handlers

import (
	"log/slog"
	"net/http"

	"github.com/JNickson/cluster-health-api/internal/pods"
	"github.com/JNickson/cluster-health-api/internal/utils"
)

func PodsHandler(svc pods.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pods, err := svc.FetchPods(r.Context())
		if err != nil {
			slog.Error("failed to collect pods", "error", err)
			WriteError(w, r, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
			return
		}

		utils.WriteJSON(w, http.StatusOK, pods)
	}
}
