package notify

// PermissionRequiredMessage is shown once when enabling notifications is denied.
const PermissionRequiredMessage = "Notifications permission is required to receive price alerts."

// EnabledNotification confirms that notifications were switched on.
func EnabledNotification() Options {
	return Options{
		Title: "Notifications Enabled! 🔔",
		Body:  "You will now receive price alerts for your tracked products.",
	}
}

// PreviewNotification previews what a price alert looks like.
func PreviewNotification() Options {
	return Options{
		Title: "Test Notification 📱",
		Body:  "This is how price alerts will appear!",
	}
}
