package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ops/models"
	"github.com/yeremiapane/restaurant-ops/utils"
	"gorm.io/gorm"
)

// SMSResult is the outcome of a gateway call. It is only ever logged or
// returned to clients; gateway failures never become Go errors.
type SMSResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

type SendSMSOptions struct {
	Numbers       []string
	Message       string
	TextType      string // "text" or "unicode"
	ScheduledTime *time.Time
}

// ReservationNotice is what a guest SMS is built from.
type ReservationNotice struct {
	GuestName      string
	GuestPhone     string
	StartTime      time.Time
	NumberOfGuests int
}

var (
	smsErrorMarkers   = []string{"error", "invalid", "failed", "insufficient", "no credit", "unauthorized"}
	smsSuccessMarkers = []string{"sms sent", "message sent", "delivered"}

	creditsPattern         = regexp.MustCompile(`(\d{3,}(?:\.\d+)?)`)
	creditsFallbackPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
	senderSeparators       = regexp.MustCompile(`[,\n\r\t]`)
)

// SMSService talks to the HTTP-GET SMS gateway with per-restaurant
// credentials.
type SMSService struct {
	DB         *gorm.DB
	BaseURL    string
	Timeout    time.Duration
	httpClient *http.Client
	wg         sync.WaitGroup
}

func NewSMSService(db *gorm.DB, baseURL string, timeout time.Duration) *SMSService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SMSService{
		DB:      db,
		BaseURL: baseURL,
		Timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send delivers opts through the restaurant's gateway account.
func (s *SMSService) Send(ctx context.Context, restaurantID string, opts SendSMSOptions) SMSResult {
	restaurant, err := s.restaurant(ctx, restaurantID)
	if err != nil {
		return s.failed(restaurantID, err)
	}
	if !restaurant.SMSEnabled {
		return s.failed(restaurantID, errors.New("SMS is not enabled for this restaurant"))
	}
	if !restaurant.SMSConfigured() {
		return s.failed(restaurantID, errors.New("SMS configuration is incomplete"))
	}
	if len(opts.Numbers) == 0 || strings.TrimSpace(opts.Message) == "" {
		return s.failed(restaurantID, errors.New("numbers and message are required"))
	}

	textType := opts.TextType
	if textType == "" {
		textType = "text"
	}
	params := url.Values{}
	params.Set("username", restaurant.SMSUsername)
	params.Set("password", restaurant.SMSPassword)
	params.Set("msg", opts.Message)
	params.Set("texttype", textType)
	params.Set("numbers", strings.Join(opts.Numbers, ","))
	params.Set("sender", restaurant.SMSSenderID)
	if opts.ScheduledTime != nil {
		params.Set("dtime", opts.ScheduledTime.UTC().Format("2006-01-02 15:04:05"))
	}

	body, err := s.get(ctx, params)
	if err != nil {
		return s.failed(restaurantID, err)
	}

	log := utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": restaurantID,
		"numbers":       params.Get("numbers"),
	})
	if !SMSAccepted(body) {
		log.WithField("response", body).Warn("sms gateway rejected message")
		return SMSResult{Success: false, Message: "SMS sending failed: " + body, Data: body}
	}
	log.Info("sms sent")
	return SMSResult{Success: true, Message: "SMS sent successfully", Data: body}
}

// Credits queries the remaining balance and stores it on the restaurant.
func (s *SMSService) Credits(ctx context.Context, restaurantID string) (float64, error) {
	restaurant, err := s.restaurant(ctx, restaurantID)
	if err != nil {
		return 0, err
	}
	if restaurant.SMSUsername == "" || restaurant.SMSPassword == "" {
		return 0, badRequest("SMS credentials not configured")
	}

	params := url.Values{}
	params.Set("username", restaurant.SMSUsername)
	params.Set("password", restaurant.SMSPassword)
	params.Set("type", "credits")

	body, err := s.get(ctx, params)
	if err != nil {
		return 0, err
	}
	credits := ParseCredits(body)

	now := time.Now()
	if err := s.DB.WithContext(ctx).Model(&models.Restaurant{}).
		Where("id = ?", restaurantID).
		Updates(map[string]interface{}{"sms_credits": credits, "sms_last_updated": now}).Error; err != nil {
		return 0, err
	}
	return credits, nil
}

// SMSConfig is the restaurant's gateway setup as shown to its staff. The
// password itself never leaves the server.
type SMSConfig struct {
	Enabled             bool       `json:"enabled"`
	Username            string     `json:"username"`
	PasswordSet         bool       `json:"passwordSet"`
	SenderID            string     `json:"senderId"`
	Credits             float64    `json:"credits"`
	LastUpdated         *time.Time `json:"lastUpdated"`
	ConfirmationEnabled bool       `json:"confirmationEnabled"`
	CancellationEnabled bool       `json:"cancellationEnabled"`
}

func SMSConfigOf(r *models.Restaurant) SMSConfig {
	return SMSConfig{
		Enabled:             r.SMSEnabled,
		Username:            r.SMSUsername,
		PasswordSet:         r.SMSPassword != "",
		SenderID:            r.SMSSenderID,
		Credits:             r.SMSCredits,
		LastUpdated:         r.SMSLastUpdated,
		ConfirmationEnabled: r.SMSConfirmationEnabled,
		CancellationEnabled: r.SMSCancellationEnabled,
	}
}

// SenderIDs lists the sender names registered on the restaurant's account.
func (s *SMSService) SenderIDs(ctx context.Context, restaurantID string) ([]string, error) {
	restaurant, err := s.restaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if restaurant.SMSUsername == "" || restaurant.SMSPassword == "" {
		return nil, badRequest("SMS credentials not configured")
	}

	params := url.Values{}
	params.Set("username", restaurant.SMSUsername)
	params.Set("password", restaurant.SMSPassword)
	params.Set("type", "senders")

	body, err := s.get(ctx, params)
	if err != nil {
		return nil, err
	}
	if !SMSAccepted(body) {
		return nil, fmt.Errorf("sms gateway: %s", body)
	}
	return ParseSenderIDs(body), nil
}

// RequestSenderID asks the gateway to register a new sender name.
func (s *SMSService) RequestSenderID(ctx context.Context, restaurantID, senderID, countryCode string) SMSResult {
	restaurant, err := s.restaurant(ctx, restaurantID)
	if err != nil {
		return s.failed(restaurantID, err)
	}
	if restaurant.SMSUsername == "" || restaurant.SMSPassword == "" {
		return s.failed(restaurantID, errors.New("SMS credentials not configured"))
	}

	params := url.Values{}
	params.Set("username", restaurant.SMSUsername)
	params.Set("password", restaurant.SMSPassword)
	params.Set("type", "requestsender")
	params.Set("sender", senderID)
	params.Set("countrycode", countryCode)

	body, err := s.get(ctx, params)
	if err != nil {
		return s.failed(restaurantID, err)
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": restaurantID,
		"sender":        senderID,
	}).Info("sender id requested")
	if !SMSAccepted(body) {
		return SMSResult{Success: false, Message: "Sender ID request failed: " + body, Data: body}
	}
	return SMSResult{Success: true, Message: "Sender ID request submitted", Data: body}
}

func (s *SMSService) SendReservationConfirmation(ctx context.Context, restaurant *models.Restaurant, n ReservationNotice) SMSResult {
	if !restaurant.SMSEnabled {
		return SMSResult{Message: "SMS is not enabled for this restaurant"}
	}
	if !restaurant.SMSConfirmationEnabled {
		return SMSResult{Message: "SMS confirmation notifications are disabled"}
	}
	msg := ConfirmationMessage(n, utils.LoadLocation(restaurant.Timezone))
	return s.Send(ctx, restaurant.ID, SendSMSOptions{Numbers: []string{n.GuestPhone}, Message: msg})
}

func (s *SMSService) SendReservationCancellation(ctx context.Context, restaurant *models.Restaurant, n ReservationNotice) SMSResult {
	if !restaurant.SMSEnabled {
		return SMSResult{Message: "SMS is not enabled for this restaurant"}
	}
	if !restaurant.SMSCancellationEnabled {
		return SMSResult{Message: "SMS cancellation notifications are disabled"}
	}
	msg := CancellationMessage(n, utils.LoadLocation(restaurant.Timezone))
	if len(msg) > 160 {
		utils.InfoLogger.WithField("length", len(msg)).Warn("cancellation sms exceeds 160 characters")
	}
	return s.Send(ctx, restaurant.ID, SendSMSOptions{Numbers: []string{n.GuestPhone}, Message: msg})
}

// NotifyConfirmed and NotifyCancelled send in the background with their own
// timeout; the caller's request never waits for or fails on the gateway.
func (s *SMSService) NotifyConfirmed(restaurant models.Restaurant, n ReservationNotice) {
	s.dispatch("confirmation", func(ctx context.Context) SMSResult {
		return s.SendReservationConfirmation(ctx, &restaurant, n)
	})
}

func (s *SMSService) NotifyCancelled(restaurant models.Restaurant, n ReservationNotice) {
	s.dispatch("cancellation", func(ctx context.Context) SMSResult {
		return s.SendReservationCancellation(ctx, &restaurant, n)
	})
}

// Wait blocks until background notifications have finished.
func (s *SMSService) Wait() {
	s.wg.Wait()
}

func (s *SMSService) dispatch(kind string, send func(ctx context.Context) SMSResult) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
		defer cancel()

		res := send(ctx)
		utils.InfoLogger.WithFields(logrus.Fields{
			"kind":    kind,
			"success": res.Success,
		}).Info(res.Message)
	}()
}

func (s *SMSService) restaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	var r models.Restaurant
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Restaurant with ID %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SMSService) get(ctx context.Context, params url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Restaurant-SMS-Service/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("sms gateway: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", errors.New("invalid SMS credentials")
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return strings.TrimSpace(string(raw)), nil
}

func (s *SMSService) failed(restaurantID string, err error) SMSResult {
	utils.ErrorLogger.WithField("restaurant_id", restaurantID).Errorf("Failed to send SMS: %v", err)
	return SMSResult{Success: false, Message: err.Error()}
}

// SMSAccepted classifies the gateway's free-text reply. Error markers win
// unless a success marker is present too.
func SMSAccepted(body string) bool {
	text := strings.ToLower(body)
	isError, isSuccess := false, false
	for _, m := range smsErrorMarkers {
		if strings.Contains(text, m) {
			isError = true
			break
		}
	}
	for _, m := range smsSuccessMarkers {
		if strings.Contains(text, m) {
			isSuccess = true
			break
		}
	}
	return !isError || isSuccess
}

// ParseCredits pulls the balance out of the credits reply: the first number
// with three or more digits, else any number, else zero.
func ParseCredits(body string) float64 {
	match := creditsPattern.FindStringSubmatch(body)
	if match == nil {
		match = creditsFallbackPattern.FindStringSubmatch(body)
	}
	if match == nil {
		return 0
	}
	v, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseSenderIDs reads the sender list reply: a JSON array, a JSON object
// with "senderIds" or "data", or names separated by commas, tabs or newlines.
func ParseSenderIDs(body string) []string {
	ids := []string{}
	trimmed := strings.TrimSpace(body)
	var list []string
	var wrapped struct {
		SenderIDs []string `json:"senderIds"`
		Data      []string `json:"data"`
	}
	switch {
	case strings.HasPrefix(trimmed, "[") && json.Unmarshal([]byte(trimmed), &list) == nil:
	case strings.HasPrefix(trimmed, "{") && json.Unmarshal([]byte(trimmed), &wrapped) == nil:
		list = wrapped.SenderIDs
		if list == nil {
			list = wrapped.Data
		}
	default:
		list = senderSeparators.Split(trimmed, -1)
	}
	for _, id := range list {
		id = strings.TrimSpace(id)
		if id == "" || strings.Contains(strings.ToLower(id), "error") {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func ConfirmationMessage(n ReservationNotice, loc *time.Location) string {
	return fmt.Sprintf("Dear %s, your reservation has been confirmed on %s for %d %s.",
		n.GuestName, formatSlot(n.StartTime, loc), n.NumberOfGuests, guestWord(n.NumberOfGuests))
}

func CancellationMessage(n ReservationNotice, loc *time.Location) string {
	return fmt.Sprintf("Dear %s, your reservation on %s for %d %s has been cancelled.",
		n.GuestName, formatSlot(n.StartTime, loc), n.NumberOfGuests, guestWord(n.NumberOfGuests))
}

func formatSlot(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("Monday, January 2, 2006 at 3:04 PM")
}

func guestWord(n int) string {
	if n == 1 {
		return "guest"
	}
	return "guests"
}
