package utils

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const africasTalkingURL = "https://api.africastalking.com/version1/messaging"

// SMSSender delivers text messages through the Africa's Talking API.
type SMSSender struct {
	Username string
	APIKey   string
	Endpoint string
	Client   *http.Client
}

func (s SMSSender) Configured() bool {
	return s.Username != "" && s.APIKey != ""
}

func (s SMSSender) sendSMS(message string, recipients []string) error {
	if s.Username == "" {
		return fmt.Errorf("africa's talking username not set")
	}
	if s.APIKey == "" {
		return fmt.Errorf("africa's talking API key not set")
	}

	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = africasTalkingURL
	}
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	data := url.Values{}
	data.Set("username", s.Username)
	data.Set("to", strings.Join(recipients, ","))
	data.Set("message", message)

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apiKey", s.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send SMS: status code %d", resp.StatusCode)
	}

	logrus.WithField("recipients", len(recipients)).Info("sms sent")
	return nil
}

func (s SMSSender) SendBookingConfirmedSMS(phone string, n TripNotice) error {
	msg := fmt.Sprintf("Booking #%d confirmed: %s %s to %s on %s, seats %s. Total %.2f.",
		n.BookingID, n.RouteNumber, n.Source, n.Destination, n.TravelDate, n.Seats, n.TotalAmount)
	return s.sendSMS(msg, []string{phone})
}

func (s SMSSender) SendBookingCancelledSMS(phone string, n TripNotice) error {
	msg := fmt.Sprintf("Booking #%d (%s, %s) has been cancelled. Seats %s released.",
		n.BookingID, n.RouteNumber, n.TravelDate, n.Seats)
	return s.sendSMS(msg, []string{phone})
}
