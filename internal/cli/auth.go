package cli

import (
	"context"
	"os"
	"strings"

	"github.com/LautaroLeall/Routine-Calendary/internal/auth"
	"github.com/LautaroLeall/Routine-Calendary/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in
// tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, username, password, and purposes, and creates
// a new account. On success the session switches to the new user.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	purposeLine, err := getSimpleText(a.reader, "What will you use it for? (comma-separated, optional)", os.Stdout)
	if err != nil {
		return err
	}

	id, err := a.auth.Register(ctx, auth.RegisterParams{
		Email:    email,
		Username: username,
		Password: string(password),
		Purpose:  splitPurpose(purposeLine),
	})
	if err != nil {
		return err
	}

	printlnFn("Welcome,", username+"!", "(id:", id+")")
	return nil
}

// Login prompts for an identifier (email or username) and a password and
// authenticates the session.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter email or username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.auth.Login(ctx, auth.LoginParams{
		Identifier: identifier,
		Password:   string(password),
	}); err != nil {
		return err
	}

	printlnFn("Login successful")
	return nil
}

// Logout clears the session pointer.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	printlnFn("Logged out")
	return nil
}

// WhoAmI prints the authenticated user's public profile.
func (a *App) WhoAmI(ctx context.Context) error {
	user := a.auth.CurrentUser(ctx)
	if user == nil {
		printlnFn("Not logged in")
		return nil
	}
	printlnFn("Username:", user.Username)
	printlnFn("Email:   ", user.Email)
	if len(user.Purpose) > 0 {
		printlnFn("Purpose: ", strings.Join(user.Purpose, ", "))
	}
	printlnFn("Since:   ", user.CreatedAt.Format("2006-01-02"))
	return nil
}

// Profile prompts for new profile values and patches the authenticated
// user's record. Empty answers keep the current value.
func (a *App) Profile(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "New email (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "New username (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	purposeLine, err := getSimpleText(a.reader, "New purposes, comma-separated (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}

	var patch auth.UserPatch
	if email != "" {
		patch.Email = &email
	}
	if username != "" {
		patch.Username = &username
	}
	if purposeLine != "" {
		purpose := splitPurpose(purposeLine)
		patch.Purpose = &purpose
	}

	user, err := a.auth.UpdateUser(ctx, patch)
	if err != nil {
		return err
	}
	printlnFn("Profile updated for", user.Username)
	return nil
}

// ChangePassword verifies the current password and replaces it.
func (a *App) ChangePassword(ctx context.Context) error {
	current, err := getPassword("Current password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	next, err := getPassword("New password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	if err := a.auth.ChangePassword(ctx, auth.ChangePasswordParams{
		CurrentPassword: string(current),
		NewPassword:     string(next),
	}); err != nil {
		return err
	}

	printlnFn("Password changed")
	return nil
}

// DeleteAccount removes the authenticated user's record and data document
// after an explicit confirmation.
func (a *App) DeleteAccount(ctx context.Context) error {
	user := a.auth.CurrentUser(ctx)
	if user == nil {
		printlnFn("Not logged in")
		return nil
	}

	ok, err := GetConfirm(a.reader, "Delete account '"+user.Username+"' and all its data?", os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Aborted")
		return nil
	}

	if err := a.auth.DeleteAccount(ctx, user.ID); err != nil {
		return err
	}
	a.data.Delete(ctx, user.ID)

	printlnFn("Account deleted")
	return nil
}

func splitPurpose(line string) []string {
	purpose := []string{}
	for _, p := range strings.Split(line, ",") {
		if p = strings.TrimSpace(p); p != "" {
			purpose = append(purpose, p)
		}
	}
	return purpose
}
