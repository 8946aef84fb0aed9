package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mattermost/mattermost/server/public/model"
	"github.com/mattermost/mattermost/server/public/plugin"
)

// isPermissionError reports whether a platform call was denied rather than
// having failed for some transient reason.
func isPermissionError(appErr *model.AppError) bool {
	return appErr != nil && (appErr.StatusCode == http.StatusForbidden || appErr.StatusCode == http.StatusUnauthorized)
}

// permissionsGuide builds the operator-facing remediation text logged when the
// platform denies a post/delete/edit. Not retried: the action is abandoned and
// processing of other messages continues.
func permissionsGuide(destinationChannelID string) string {
	lines := []string{
		"=== LINK RELAY PERMISSIONS GUIDE ===",
		"The relay bot needs the following permissions in the watched channels:",
		"1. Read Channel",
		"2. Create Posts",
		"3. Delete Others' Posts (source channel)",
		"",
		"To fix permissions:",
		"1. Go to System Console > User Management > Permissions",
		"2. Ensure the bot account's role can create and delete posts",
		fmt.Sprintf("3. Add the bot to the destination channel (ID: %s)", destinationChannelID),
		"4. Add the bot to the source channel",
		"",
		"After fixing permissions, re-enable the plugin.",
		"====================================",
	}
	return strings.Join(lines, "\n")
}

// logPermissionFailure logs the denied action together with the guide.
func logPermissionFailure(api plugin.API, action, destinationChannelID string, appErr *model.AppError) {
	api.LogError("Permission denied for "+action, "error", appErr.Error())
	api.LogError(permissionsGuide(destinationChannelID))
}
