package utils

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #1e88e5; margin: 0;">%s</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
		</div>
	</div>
</body>
</html>
`

// TripNotice carries what a passenger needs to see about a booking.
type TripNotice struct {
	Name        string
	BookingID   uint
	RouteNumber string
	Source      string
	Destination string
	Departure   string
	TravelDate  string
	Seats       string
	TotalAmount float64
}

type Mailer struct {
	From        string
	Password    string
	Host        string
	Port        string
	CompanyName string
	BaseURL     string
}

func (m Mailer) Configured() bool {
	return m.From != "" && m.Password != "" && m.Host != "" && m.Port != ""
}

func (m Mailer) sendEmail(to []string, subject, body string) error {
	if !m.Configured() {
		return fmt.Errorf("email configuration not set")
	}

	headers := [][2]string{
		{"From", fmt.Sprintf("%s <%s>", m.CompanyName, m.From)},
		{"To", strings.Join(to, ",")},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var message strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&message, "%s: %s\r\n", h[0], h[1])
	}
	message.WriteString("\r\n" + body)

	auth := smtp.PlainAuth("", m.From, m.Password, m.Host)
	if err := smtp.SendMail(m.Host+":"+m.Port, auth, m.From, to, []byte(message.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logrus.WithField("recipients", to).Info("email sent")
	return nil
}

func (m Mailer) SendBookingConfirmedEmail(to string, n TripNotice) error {
	subject := fmt.Sprintf("Booking #%d confirmed - %s", n.BookingID, m.CompanyName)
	return m.sendEmail([]string{to}, subject, m.bookingConfirmedBody(n))
}

func (m Mailer) SendBookingCancelledEmail(to string, n TripNotice) error {
	subject := fmt.Sprintf("Booking #%d cancelled - %s", n.BookingID, m.CompanyName)
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Cancelled</h1>
					<p>Hello %s,</p>
					<p>Your booking <strong>#%d</strong> on route <strong>%s</strong> (%s to %s) for <strong>%s</strong> has been cancelled.</p>
					<p>Seats %s are released.</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/routes" style="background-color: #1e88e5; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Find Another Bus</a>
					</div>
				</div>`+emailFooter,
		m.CompanyName, n.Name, n.BookingID, n.RouteNumber, n.Source, n.Destination, n.TravelDate, n.Seats, m.BaseURL)
	return m.sendEmail([]string{to}, subject, body)
}

func (m Mailer) bookingConfirmedBody(n TripNotice) string {
	return fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Booking Confirmed</h1>
					<p>Hello %s,</p>
					<p>Your booking <strong>#%d</strong> is confirmed.</p>
					<table style="width: 100%%; border-collapse: collapse;">
						<tr><td>Route</td><td><strong>%s</strong> (%s to %s)</td></tr>
						<tr><td>Departure</td><td>%s</td></tr>
						<tr><td>Travel date</td><td>%s</td></tr>
						<tr><td>Seats</td><td>%s</td></tr>
						<tr><td>Total</td><td>%.2f</td></tr>
					</table>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/bookings" style="background-color: #1e88e5; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">View My Bookings</a>
					</div>
				</div>`+emailFooter,
		m.CompanyName, n.Name, n.BookingID, n.RouteNumber, n.Source, n.Destination,
		n.Departure, n.TravelDate, n.Seats, n.TotalAmount, m.BaseURL)
}
