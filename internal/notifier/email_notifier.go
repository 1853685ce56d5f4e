package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	config "github.com/Maks-am-I/marinaBr/configs"
	"github.com/Maks-am-I/marinaBr/internal/models"
)

// send delivers a plain-text message to the operator mailbox. Swapped
// out in tests via SetTestSender.
var send = sendViaSES

func SetTestSender(f func(subject, body string) error) {
	send = f
}

// NotifyOrder mails the operator a summary of a freshly created order.
// Callers run it off the request path; a delivery failure is logged
// and never fails the checkout.
func NotifyOrder(order models.Order) {
	var b strings.Builder
	fmt.Fprintf(&b, "New order %s\n\n", order.Number)
	fmt.Fprintf(&b, "Customer: %s\n", order.CustomerName)
	fmt.Fprintf(&b, "Phone: %s\n", order.CustomerPhone)
	fmt.Fprintf(&b, "Delivery: %s at %s\n", formatDate(order.DeliveryDate), order.DeliveryTime)
	fmt.Fprintf(&b, "Address: %s\n\n", order.DeliveryAddress)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %s x%d — %s\n", item.Title, item.Quantity, item.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", order.TotalPrice.StringFixed(2))

	subject := fmt.Sprintf("New order from %s", order.CustomerName)

	if err := send(subject, b.String()); err != nil {
		log.WithError(err).WithField("order", order.Number).Error("order notification failed")
		return
	}
	log.WithField("order", order.Number).Info("order notification sent")
}

// NotifyContact mails the operator a question left through the
// contact form on the landing page.
func NotifyContact(name, phone, question string) {
	body := fmt.Sprintf("Name: %s\nPhone: %s\n", name, phone)
	if question != "" {
		body += fmt.Sprintf("\nQuestion:\n%s\n", question)
	}

	if err := send(fmt.Sprintf("Contact request from %s", name), body); err != nil {
		log.WithError(err).WithField("name", name).Error("contact notification failed")
		return
	}
	log.WithField("name", name).Info("contact notification sent")
}

func formatDate(d datatypes.Date) string {
	return time.Time(d).Format("2006-01-02")
}

func sendViaSES(subject, body string) error {
	cfg := config.LoadEmailConfig()

	if cfg.SenderEmail == "" {
		return fmt.Errorf("sender email address is not configured in environment variables")
	}
	if cfg.OperatorEmail == "" {
		return fmt.Errorf("operator email address is not configured in environment variables")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")),
	)
	if err != nil {
		return fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := ses.NewFromConfig(awsCfg)

	input := &ses.SendEmailInput{
		Source: aws.String(cfg.SenderEmail),
		Destination: &types.Destination{
			ToAddresses: []string{cfg.OperatorEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(body),
				},
			},
		},
	}

	if _, err := client.SendEmail(context.TODO(), input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
