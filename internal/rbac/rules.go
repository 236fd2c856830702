package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"question:list",
		"question:submit",
		"question:flag",
		"question:comment",
		"result:create",
		"result:view-own",
		"result:update-own",
	},
	// Workers author questions but cannot publish them directly;
	// their submissions land in the moderation queue.
	"worker": {
		"question:list",
		"question:submit",
		"question:create",
		"question:check-duplicate",
		"question:flag",
		"question:comment",
		"result:create",
		"result:view-own",
		"result:update-own",
	},
	"admin": {
		"*", // everything
	},
}
