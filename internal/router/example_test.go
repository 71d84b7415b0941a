package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/patric-chuzhbe/contactsapi/internal/models"
)

func ExampleRouter_GetPing() {
	env := setupTestRouter(nil)
	defer env.server.Close()

	resp, err := http.Get(env.url("/ping"))
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	fmt.Println("Status Code:", resp.StatusCode)

	// Output:
	// Status Code: 200
}

func ExampleRouter_PostApicontacts() {
	env := setupTestRouter(nil)
	defer env.server.Close()

	body, err := json.Marshal(models.ContactRequest{
		Name:  "Allen Raymond",
		Email: "nulla.ante@vestibul.com",
		Phone: "(992) 914-3792",
	})
	if err != nil {
		panic(err)
	}

	resp, err := http.Post(env.url("/api/contacts"), "application/json", bytes.NewReader(body))
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Status int `json:"status"`
		Data   struct {
			NewContact models.Contact `json:"newContact"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("Envelope status:", envelope.Status)
	fmt.Println("Favorite:", envelope.Data.NewContact.Favorite)

	// Output:
	// Status Code: 200
	// Envelope status: 201
	// Favorite: false
}

func ExampleRouter_PostApiusersSignup() {
	env := setupTestRouter(nil)
	defer env.server.Close()

	resp, err := http.Post(
		env.url("/api/users/signup"),
		"application/json",
		strings.NewReader(`{"email":"new@user.com","password":"secret1"}`),
	)
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	var signedUp models.SignupResponse
	if err := json.NewDecoder(resp.Body).Decode(&signedUp); err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("Subscription:", signedUp.User.Subscription)
	fmt.Println("Gravatar:", strings.HasPrefix(signedUp.User.AvatarURL, "https://www.gravatar.com/avatar/"))

	// Output:
	// Status Code: 201
	// Subscription: starter
	// Gravatar: true
}

func ExampleRouter_PostApiusersLogin() {
	env := setupTestRouter(nil)
	defer env.server.Close()

	credentials := `{"email":"new@user.com","password":"secret1"}`

	resp, err := http.Post(env.url("/api/users/signup"), "application/json", strings.NewReader(credentials))
	if err != nil {
		panic(err)
	}
	resp.Body.Close()

	resp, err = http.Post(env.url("/api/users/login"), "application/json", strings.NewReader(`{"email":"new@user.com","password":"wrong-password"}`))
	if err != nil {
		panic(err)
	}
	var failure models.MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&failure); err != nil {
		panic(err)
	}
	resp.Body.Close()

	fmt.Println("Wrong password:", resp.StatusCode, failure.Message)

	resp, err = http.Post(env.url("/api/users/login"), "application/json", strings.NewReader(credentials))
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()

	var loggedIn models.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loggedIn); err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("Has token:", loggedIn.Token != "")

	// Output:
	// Wrong password: 401 Email or password is wrong
	// Status Code: 200
	// Has token: true
}
