// Command send-alert enqueues one price alert for the dashboard's push relay.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/iyhunko/price-alerts-dashboard/internal/config"
	"github.com/iyhunko/price-alerts-dashboard/internal/notify"
	sqspkg "github.com/iyhunko/price-alerts-dashboard/internal/sqs"
)

func main() {
	title := flag.String("title", "", "notification title")
	body := flag.String("body", "", "notification body")
	url := flag.String("url", notify.DefaultURL, "page opened when the notification is clicked")
	timeout := flag.Duration("timeout", 10*time.Second, "publish timeout")
	flag.Parse()

	conf, err := config.LoadQueueFromEnv()
	handleErr("loading config", err)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sqsClient, err := sqspkg.NewClient(ctx, conf.Region, conf.Endpoint)
	handleErr("creating SQS client", err)

	id, err := sqspkg.NewPublisher(sqsClient, conf.SQSQueueURL).PublishAlert(ctx, notify.Payload{
		Title: *title,
		Body:  *body,
		URL:   *url,
	})
	handleErr("publishing price alert", err)
	log.Printf("price alert queued: %s", id)
}

func handleErr(msg string, err error) {
	if err != nil {
		log.Fatalf("error while %s: %v", msg, err)
	}
}
