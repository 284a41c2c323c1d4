package handlers

import (
	"net/http"

	"github.com/JNickson/cluster-health-api/internal/utils"
)

const rootMessage = "Kubernetes Cluster Health API"

type RootResponse struct {
	Message string `json:"message"`
}

func RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteJSON(w, http.StatusOK, RootResponse{Message: rootMessage})
	}
}
