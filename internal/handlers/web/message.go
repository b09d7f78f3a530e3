package web

const (
	MsgLoginWrongCredentials = "Invalid username/email or password."
	MsgLoginSessionExpired   = "Session expired. Please log in again."
	MsgLoginInactive         = "This account has not been activated yet. Check your inbox for the confirmation email, or request a new one below."
	MsgIncorrectPassword     = "Your current password is incorrect."
	MsgUsernameTaken         = "Username is already taken."
	MsgEmailRegistered       = "Email is already registered."
	MsgMailSendFailed        = "We could not send the email right now. Please try again in a few minutes."
	MsgInvalidBirthDate      = "Invalid birth date. Use the YYYY-MM-DD format."
)
