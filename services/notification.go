package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"strconv"

	"hangout-backend/config"
	"hangout-backend/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"google.golang.org/api/option"
)

type NotificationService struct {
	messaging *messaging.Client
}

var notifService *NotificationService

func GetNotificationService() *NotificationService {
	if notifService == nil {
		notifService = &NotificationService{}
		notifService.initFirebase()
	}
	return notifService
}

func (ns *NotificationService) initFirebase() {
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(config.AppConfig.FirebaseCredPath))
	if err != nil {
		log.Println("⚠️  Firebase not configured, running without push:", err)
		return
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.Println("⚠️  Firebase messaging unavailable:", err)
		return
	}
	ns.messaging = client
	log.Println("✅ Firebase messaging initialized")
}

// ============================================================
// PUSH NOTIFICATIONS via Firebase Cloud Messaging
// ============================================================

func (ns *NotificationService) sendPush(fcmToken string, title string, body string, data map[string]string) {
	if ns.messaging == nil || fcmToken == "" {
		return
	}

	msg := &messaging.Message{
		Token: fcmToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := ns.messaging.Send(context.Background(), msg); err != nil {
		log.Printf("❌ FCM send error: %v", err)
		return
	}
	log.Printf("✅ Push notification sent: %s", title)
}

// PushBadgeCount sends a data-only message so the client can update its
// inbox badge without showing a banner.
func (ns *NotificationService) PushBadgeCount(fcmToken string, count int) {
	if ns.messaging == nil || fcmToken == "" {
		return
	}

	msg := &messaging.Message{
		Token: fcmToken,
		Data: map[string]string{
			"type":  "badge",
			"count": strconv.Itoa(count),
		},
	}

	if _, err := ns.messaging.Send(context.Background(), msg); err != nil {
		log.Printf("❌ FCM badge push error: %v", err)
	}
}

// ============================================================
// EMAIL NOTIFICATIONS via SendGrid
// ============================================================

func (ns *NotificationService) sendEmail(toEmail string, toName string, subject string, htmlBody string) {
	if config.AppConfig.SendGridAPIKey == "" {
		log.Printf("⚠️  SendGrid API key not set, skipping email to %s", toEmail)
		return
	}

	from := mail.NewEmail(config.AppConfig.AppName, config.AppConfig.SendGridFrom)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("❌ Email send error: %v", err)
		return
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.Printf("✅ Email sent to %s", toEmail)
	} else {
		log.Printf("⚠️  SendGrid returned status: %d", resp.StatusCode)
	}
}

// ============================================================
// NOTIFICATION EVENTS
// ============================================================

// NotifyInviteReceived tells a recipient a new hangout invite landed in
// their inbox.
func (ns *NotificationService) NotifyInviteReceived(recipient models.User, sender models.User, invite models.Invite) {
	title := fmt.Sprintf("%s wants to hang out!", sender.Name)
	body := fmt.Sprintf("%s on %s at %s", invite.Place, invite.Date, invite.Time)

	ns.sendPush(recipient.FCMToken, title, body, map[string]string{
		"type":      "invite_received",
		"invite_id": invite.ID.String(),
	})

	htmlBody := buildInviteEmailHTML(sender.Name, recipient.Name, invite.Place, invite.Date, invite.Time)
	ns.sendEmail(recipient.Email, recipient.Name, title, htmlBody)
}

// NotifyCounterProposal tells the original sender their invite was
// countered with a new place or time.
func (ns *NotificationService) NotifyCounterProposal(sender models.User, responder models.User, invite models.Invite) {
	title := fmt.Sprintf("%s suggested a change", responder.Name)
	body := invite.Note

	ns.sendPush(sender.FCMToken, title, body, map[string]string{
		"type":      "counter_proposed",
		"invite_id": invite.ID.String(),
	})

	htmlBody := buildCounterEmailHTML(responder.Name, sender.Name, invite.Place, invite.Date, invite.Time)
	ns.sendEmail(sender.Email, sender.Name, title, htmlBody)
}

// NotifyReviewRequest prompts an attendee to review a past meetup.
func (ns *NotificationService) NotifyReviewRequest(attendee models.User, meetup models.Meetup) {
	title := "How was it?"
	body := fmt.Sprintf("Leave a quick review for \"%s\"", meetup.Title)

	ns.sendPush(attendee.FCMToken, title, body, map[string]string{
		"type":      "review_request",
		"meetup_id": meetup.ID.String(),
	})
}

// ============================================================
// EMAIL TEMPLATES
// ============================================================

func buildInviteEmailHTML(senderName, recipientName, place, date, timeOfDay string) string {
	tmpl := `
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #6C5CE7; margin-top: 0;">🎉 New Hangout Invite</h2>
		<p>Hi <strong>{{.RecipientName}}</strong>,</p>
		<p><strong>{{.SenderName}}</strong> wants to hang out:</p>
		<div style="background: #f8f9fa; border-radius: 8px; padding: 16px; margin: 16px 0;">
			<p style="margin: 4px 0; font-size: 18px;"><strong>{{.Place}}</strong></p>
			<p style="margin: 4px 0; color: #666;">{{.Date}} at {{.Time}}</p>
		</div>
		<p>Open the app to accept, decline, or suggest a change.</p>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">— Hangout</p>
	</div>
</body>
</html>`

	t, _ := template.New("invite").Parse(tmpl)
	var buf bytes.Buffer
	t.Execute(&buf, map[string]interface{}{
		"SenderName":    senderName,
		"RecipientName": recipientName,
		"Place":         place,
		"Date":          date,
		"Time":          timeOfDay,
	})
	return buf.String()
}

func buildCounterEmailHTML(responderName, senderName, place, date, timeOfDay string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #6C5CE7; margin-top: 0;">🔄 Counter-proposal</h2>
		<p>Hi <strong>%s</strong>,</p>
		<p><strong>%s</strong> suggested a change to your hangout:</p>
		<div style="background: #f8f9fa; border-radius: 8px; padding: 16px; margin: 16px 0;">
			<p style="margin: 4px 0; font-size: 18px;"><strong>%s</strong></p>
			<p style="margin: 4px 0; color: #666;">%s at %s</p>
		</div>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">— Hangout</p>
	</div>
</body>
</html>`, senderName, responderName, place, date, timeOfDay)
}
