package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/models"
)

type WebhookService interface {
	SendSwapPhaseEvent(parent *models.Account, event models.WebhookEvent, exec *models.SwapExecution) (self WebhookService)
	SendBalanceRevealedEvent(parent *models.Account, view *models.BalanceView) (self WebhookService)
	SendRegistryUpdatedEvent(parent *models.Account, profile *models.RegistryProfile) (self WebhookService)
}

type webhookService struct {
	service
}

func NewWebhookService(log *zap.Logger) WebhookService {
	return &webhookService{
		service: service{
			log: log,
		},
	}
}

func (w *webhookService) doRequest(url string, body *bytes.Buffer, key *string) (error, bool) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return err, false
	}

	if key != nil {
		now := time.Now().Unix()
		data := strings.ReplaceAll(body.String(), "/", "\\/")
		payload := fmt.Sprintf("%d.%s", now, data)
		mac := hmac.New(sha256.New, []byte(*key))
		if _, err := mac.Write([]byte(payload)); err != nil {
			return err, false
		}
		signature := hex.EncodeToString(mac.Sum(nil))
		req.Header.Set("zenith-signature", fmt.Sprintf("ts=%d,sig=%s", now, signature))
	}

	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "application/json")

	res, err := http.DefaultClient.Do(req)
	if res != nil {
		resData, _ := io.ReadAll(res.Body)
		res.Body.Close()
		w.log.Info("response from callback", zap.String("Response Data", string(resData)))
	}
	return err, (res != nil && res.StatusCode < 300)
}

func (w *webhookService) sendEvent(parent *models.Account, eventType models.WebhookEvent, eventData any) (self WebhookService) {
	if parent == nil || parent.CallbackURL == nil {
		return w
	}
	w.log.Info("dispatching event...", zap.String("Event Type", eventType.String()))

	event := &models.Webhook{
		Event: eventType,
		Data:  eventData,
	}

	data, err := json.Marshal(event)
	if err != nil {
		w.log.Error("encoding request body", zap.Error(err))
		return w
	}

	err, ok := w.doRequest(*parent.CallbackURL, bytes.NewBuffer(data), parent.WebhookKey)
	if err != nil {
		w.log.Error("dispatching request", zap.Error(err))
		return w
	}

	if ok {
		return w
	}

	// todo: schedule event for single retry
	return w
}

func (w *webhookService) SendSwapPhaseEvent(parent *models.Account, event models.WebhookEvent, exec *models.SwapExecution) (self WebhookService) {
	return w.sendEvent(parent, event, exec)
}

func (w *webhookService) SendBalanceRevealedEvent(parent *models.Account, view *models.BalanceView) (self WebhookService) {
	return w.sendEvent(parent, models.BalanceRevealed_WebhookEvent, view)
}

func (w *webhookService) SendRegistryUpdatedEvent(parent *models.Account, profile *models.RegistryProfile) (self WebhookService) {
	return w.sendEvent(parent, models.RegistryUpdated_WebhookEvent, profile)
}
