package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

// Obtains a refresh token for the notification sender mailbox. The readonly
// scope is needed for the push-notification watch.
func main() {
	clientID := os.Getenv("GMAIL_CLIENT_ID")
	clientSecret := os.Getenv("GMAIL_CLIENT_SECRET")

	if clientID == "" || clientSecret == "" {
		log.Fatal("Please set GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET environment variables")
	}

	redirect := os.Getenv("GMAIL_REDIRECT_URL")
	if redirect == "" {
		redirect = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{gmail.GmailSendScope, gmail.GmailReadonlyScope},
		Endpoint:     google.Endpoint,
		RedirectURL:  redirect,
	}

	authURL := config.AuthCodeURL("builderops-notify", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("Open this link and sign in as the sender account:\n%v\n", authURL)
	fmt.Println("\nAfter consenting you are redirected; copy the 'code' query parameter.")

	var authCode string
	fmt.Print("\nAuthorization code: ")
	if _, err := fmt.Scan(&authCode); err != nil {
		log.Fatalf("Unable to read authorization code: %v", err)
	}

	tok, err := config.Exchange(context.Background(), authCode)
	if err != nil {
		log.Fatalf("Unable to exchange authorization code: %v", err)
	}
	if tok.RefreshToken == "" {
		log.Fatal("No refresh token returned; revoke the app's access and run again")
	}

	fmt.Println("\nAdd the refresh token to the service environment:")
	fmt.Printf("export GMAIL_REFRESH_TOKEN=\"%s\"\n", tok.RefreshToken)
}
