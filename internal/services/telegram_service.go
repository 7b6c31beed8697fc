package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// TelegramService pings the dealership admin chat when orders need attention.
// Failures are logged and swallowed; notifications never block the lifecycle.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to the specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// OrderNotification contains order data for the review-queue notification.
type OrderNotification struct {
	TrackingCode     string
	CarName          string
	ConditionSummary string
	BuyerName        string
	BuyerPhone       string
	ProposedPrice    decimal.Decimal
	FinalPrice       decimal.Decimal
	Status           string
}

// FormatPrice renders an amount with thousand separators and currency unit.
func FormatPrice(amount decimal.Decimal) string {
	str := amount.StringFixed(0)

	negative := strings.HasPrefix(str, "-")
	if negative {
		str = str[1:]
	}

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	out := result.String() + " IRR"
	if negative {
		out = "-" + out
	}
	return out
}

// NotifyOrderSubmitted tells the admin chat a new order entered the review
// queue.
func (s *TelegramService) NotifyOrderSubmitted(order OrderNotification) error {
	if s.adminChatID == "" {
		return nil
	}

	message := fmt.Sprintf(`<b>🚗 سفارش جدید در صف بررسی</b>
<b>خودرو:</b> %s
<b>بخشنامه:</b> %s
<b>خریدار:</b> %s
<b>تلفن:</b> %s
<b>قیمت پیشنهادی:</b> %s
━━━━━━━━━━━━━━━━━━`,
		order.CarName,
		order.ConditionSummary,
		order.BuyerName,
		order.BuyerPhone,
		FormatPrice(order.ProposedPrice),
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}

// NotifyOrderApproved tells the admin chat an order moved to payment with its
// issued tracking code.
func (s *TelegramService) NotifyOrderApproved(order OrderNotification) error {
	if s.adminChatID == "" {
		return nil
	}

	message := fmt.Sprintf(`<b>✅ سفارش تایید شد</b>
<b>کد پیگیری:</b> %s
<b>خودرو:</b> %s
<b>خریدار:</b> %s
<b>قیمت نهایی:</b> %s
━━━━━━━━━━━━━━━━━━`,
		order.TrackingCode,
		order.CarName,
		order.BuyerName,
		FormatPrice(order.FinalPrice),
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}
