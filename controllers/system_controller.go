package controllers

import (
	"fmt"
	"net/http"

	"hostelswap_server/utils"
)

// HealthCheckHandler provides a basic health check
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// WelcomeHandler provides a welcome message
func WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Welcome to the HostelSwap API."})
}

// PrivacyPolicyHandler serves the privacy policy linked from the mobile app
func PrivacyPolicyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")

	html := `
	<!DOCTYPE html>
	<html lang="en">
	<head>
		<meta charset="UTF-8">
		<meta name="viewport" content="width=device-width, initial-scale=1.0">
		<title>Privacy Policy</title>
	</head>
	<body>
		<h1>Privacy Policy</h1>
		<p>HostelSwap stores your profile, your current room and the room proof documents you upload
		so that other residents can evaluate exchange requests.</p>
		<p>Proof documents are only shared with users involved in an exchange on your listing.</p>
		<p>You can close your listings and delete your messages at any time.</p>
	</body>
	</html>
	`
	fmt.Fprint(w, html)
}
