package httpadapter

import (
	"context"
	"log/slog"

	"pulseops/contexts/identity-access/secrets-service/application"
	"pulseops/contexts/identity-access/secrets-service/ports"
	httptransport "pulseops/contexts/identity-access/secrets-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// CreateKeyHandler godoc
// @Summary Create an API key
// @Description Returns the plaintext key once; only its hash is stored.
// @Tags keys
// @Accept json
// @Produce json
// @Param request body httptransport.CreateKeyRequest true "Key name"
// @Success 201 {object} httptransport.CreateKeyResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /api/keys [post]
func (h Handler) CreateKeyHandler(ctx context.Context, req httptransport.CreateKeyRequest) (httptransport.CreateKeyResponse, error) {
	created, err := h.Service.CreateKey(ctx, req.Name)
	if err != nil {
		return httptransport.CreateKeyResponse{}, err
	}
	return httptransport.CreateKeyResponse{
		ID:        created.Key.ID,
		Name:      created.Key.Name,
		Key:       created.Plaintext,
		CreatedAt: created.Key.CreatedAt,
		ExpiresAt: created.Key.ExpiresAt,
	}, nil
}

// ListKeysHandler godoc
// @Summary List API keys
// @Description Metadata only; hashes and plaintext are never returned.
// @Tags keys
// @Produce json
// @Success 200 {object} httptransport.ListKeysResponse
// @Router /api/keys [get]
func (h Handler) ListKeysHandler(ctx context.Context) (httptransport.ListKeysResponse, error) {
	keys, err := h.Service.ListKeys(ctx)
	if err != nil {
		return httptransport.ListKeysResponse{}, err
	}
	items := make([]httptransport.KeyResponse, 0, len(keys))
	for _, key := range keys {
		items = append(items, mapKey(key))
	}
	return httptransport.ListKeysResponse{Items: items, Total: len(items)}, nil
}

// VerifyKeyHandler godoc
// @Summary Verify an API key
// @Description Gateway verification endpoint; invalid keys yield 401.
// @Tags keys
// @Accept json
// @Produce json
// @Param request body httptransport.VerifyRequest true "Plaintext key"
// @Success 200 {object} httptransport.VerifyResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Router /internal/verify [post]
func (h Handler) VerifyKeyHandler(ctx context.Context, req httptransport.VerifyRequest) (httptransport.VerifyResponse, error) {
	key, err := h.Service.VerifyKey(ctx, req.APIKey)
	if err != nil {
		return httptransport.VerifyResponse{}, err
	}
	return httptransport.VerifyResponse{Valid: true, KeyID: key.ID}, nil
}

func mapKey(key ports.APIKey) httptransport.KeyResponse {
	return httptransport.KeyResponse{
		ID:         key.ID,
		Name:       key.Name,
		CreatedAt:  key.CreatedAt,
		LastUsedAt: key.LastUsedAt,
		ExpiresAt:  key.ExpiresAt,
		Active:     key.Active,
	}
}
