package main

import (
	"context"
	"log"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"marseille-outings-aggregator/internal/api"
	"marseille-outings-aggregator/internal/config"
	"marseille-outings-aggregator/internal/services"
)

var handler *api.Handler

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	fetcher := services.NewPageFetcher(cfg.FetchTimeout)
	shotgun := services.NewShotgunClient(cfg.ShotgunEndpoint, cfg.FetchTimeout)
	store := services.NewStoreClient(cfg.SupabaseURL, cfg.ServiceRoleKey, cfg.FetchTimeout)

	archive, err := services.NewArchiveClient(ctx, cfg.S3BucketName)
	if err != nil {
		log.Printf("archive disabled: %v", err)
	}

	pipeline := services.NewPipeline(fetcher, shotgun, store, archive, cfg.EnrichTimeout)
	handler = api.NewHandler(pipeline, store, shotgun)
}

// handleRequest adapts an API Gateway proxy event onto the shared router.
func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	query := url.Values{}
	for k, v := range request.QueryStringParameters {
		query.Set(k, v)
	}

	res := handler.Handle(ctx, api.Request{
		Method: request.HTTPMethod,
		Path:   request.Path,
		Query:  query,
		Body:   []byte(request.Body),
	})

	return events.APIGatewayProxyResponse{
		StatusCode: res.StatusCode,
		Headers:    res.Headers,
		Body:       string(res.Body),
	}, nil
}

func main() {
	lambda.Start(handleRequest)
}
