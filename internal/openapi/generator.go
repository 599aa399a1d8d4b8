package openapi

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Generate builds the OpenAPI 3.1 description of the dashboard API served
// under /admin/api.
func Generate(baseURL, version string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "modpanel dashboard API",
			Description: "Moderation dashboard for SkillExchange: reports, users, chat messages and the session audit log.",
			Version:     version,
		},
		Servers: openapi3.Servers{
			{URL: baseURL},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["sessionCookie"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type: "apiKey",
			In:   "cookie",
			Name: "admin_session",
		},
	}
	doc.Security = openapi3.SecurityRequirements{
		{"sessionCookie": {}},
	}

	doc.Components.Schemas["ErrorResponse"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"code":    &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}},
							"message": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
							"context": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}},
						},
					},
				},
			},
		},
	}
	for name, schema := range componentSchemas() {
		doc.Components.Schemas[name] = schema
	}

	doc.Paths = openapi3.NewPaths()
	addSessionPaths(doc)
	addReportPaths(doc)
	addUserPaths(doc)
	addMessagePaths(doc)
	addMiscPaths(doc)

	return doc
}

// ─── Component Schemas ──────────────────────────────────────────────────────

func componentSchemas() openapi3.Schemas {
	return openapi3.Schemas{
		"User": object(openapi3.Schemas{
			"_id":       str(),
			"username":  str(),
			"email":     str(),
			"avatar":    str(),
			"isDelete":  boolean(),
			"isAdmin":   boolean(),
			"banned":    boolean(),
			"banReason": str(),
		}),
		"Report": object(openapi3.Schemas{
			"_id":               str(),
			"senderID":          userRef(),
			"targetID":          userRef(),
			"content":           str(),
			"evidence":          str(),
			"isResolved":        boolean(),
			"createdAt":         dateTime(),
			"updatedAt":         dateTime(),
			"status":            enum("OPEN", "UNDER_REVIEW", "RESOLVED", "REJECTED"),
			"targetType":        enum("USER", "MESSAGE"),
			"reasonCode":        enum("HARASSMENT", "SPAM", "HATE", "SCAM", "VIOLENCE", "OTHER"),
			"resolutionNote":    str(),
			"resolvedByAdminId": str(),
		}),
		"Message": object(openapi3.Schemas{
			"_id":              str(),
			"chatID":           str(),
			"senderID":         userRef(),
			"content":          str(),
			"createdAt":        dateTime(),
			"toxicityScore":    &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"number"}, Format: "double"}},
			"moderationStatus": enum("VISIBLE", "HIDDEN_AUTO", "HIDDEN_ADMIN"),
		}),
		"Chat": object(openapi3.Schemas{
			"_id":       str(),
			"members":   array(userRef()),
			"createdAt": dateTime(),
			"updatedAt": dateTime(),
		}),
		"UserModerationStats": object(openapi3.Schemas{
			"userId":                str(),
			"user":                  ref("User"),
			"reportsReceived":       integer(),
			"openReports":           integer(),
			"reportedMessagesCount": integer(),
			"lastReportedAt":        dateTime(),
			"toxicityStrikes":       integer(),
			"status":                enum("ACTIVE", "SUSPENDED", "BANNED", "DELETED"),
		}),
		"AuditLog": object(openapi3.Schemas{
			"id":         str(),
			"adminId":    str(),
			"adminEmail": str(),
			"action":     str(),
			"targetType": enum("REPORT", "USER", "MESSAGE"),
			"targetId":   str(),
			"note":       str(),
			"createdAt":  dateTime(),
		}),
		"DashboardSummary": object(openapi3.Schemas{
			"openReportsCount":  integer(),
			"topReportedUsers":  array(ref("UserModerationStats")),
			"recentOpenReports": array(ref("Report")),
		}),
		"SessionState": object(openapi3.Schemas{
			"isAuthed":   boolean(),
			"email":      str(),
			"user":       ref("User"),
			"rememberMe": boolean(),
			"loading":    boolean(),
			"error":      str(),
			"expiresAt":  dateTime(),
		}),
		"ActionResult": object(openapi3.Schemas{
			"action":      str(),
			"targetId":    str(),
			"consistency": enum("server-confirmed", "local-only"),
			"report":      ref("Report"),
			"message":     ref("Message"),
			"stats":       ref("UserModerationStats"),
		}),
		"ReportDetail": object(openapi3.Schemas{
			"report":        ref("Report"),
			"reporterLabel": str(),
			"targetLabel":   str(),
		}),
		"UserDetail": object(openapi3.Schemas{
			"user":    ref("User"),
			"stats":   ref("UserModerationStats"),
			"reports": array(ref("Report")),
		}),
	}
}

// ─── Paths ──────────────────────────────────────────────────────────────────

func addSessionPaths(doc *openapi3.T) {
	login := operation("session", "loginAdmin", "Log in as an admin", ref("SessionState"))
	login.Security = &openapi3.SecurityRequirements{}
	login.RequestBody = jsonBody("Admin credentials", object(openapi3.Schemas{
		"email":      str(),
		"password":   str(),
		"rememberMe": boolean(),
	}))
	addTooManyRequests(login)

	doc.Paths.Set("/admin/api/session", &openapi3.PathItem{
		Get:    operation("session", "getSession", "Current admin session", ref("SessionState")),
		Post:   login,
		Delete: operation("session", "logoutAdmin", "Log out and clear the moderation cache", ref("SessionState")),
	})
}

func addReportPaths(doc *openapi3.T) {
	list := operation("reports", "listReports", "List reports newest first", array(ref("Report")))
	list.Parameters = openapi3.Parameters{
		queryParam("status", "Report status, or ALL.", enum("ALL", "OPEN", "UNDER_REVIEW", "RESOLVED", "REJECTED").Value),
		queryParam("targetType", "Target type, or ALL.", enum("ALL", "USER", "MESSAGE").Value),
		queryParam("reasonCode", "Reason code, or ALL.", enum("ALL", "HARASSMENT", "SPAM", "HATE", "SCAM", "VIOLENCE", "OTHER").Value),
		queryParam("search", "Case-insensitive match on id, usernames and content.", openapi3.NewStringSchema()),
		queryParam("limit", "Maximum number of reports to return.", &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}),
	}
	file := operation("reports", "fileReport", "File a report against a user", ref("ActionResult"))
	file.Responses = newResponses("201", "Report filed", object(openapi3.Schemas{
		"data":    ref("ActionResult"),
		"message": str(),
	}))
	file.RequestBody = jsonBody("Reported user and what they did", object(openapi3.Schemas{
		"targetId": str(),
		"content":  str(),
		"evidence": str(),
	}))
	doc.Paths.Set("/admin/api/reports", &openapi3.PathItem{Get: list, Post: file})

	get := operation("reports", "getReport", "Report with reporter and target labels", ref("ReportDetail"))
	del := operation("reports", "deleteReport", "Delete a report", ref("ActionResult"))
	get.Parameters = idParam("Report ID")
	del.Parameters = idParam("Report ID")
	doc.Paths.Set("/admin/api/reports/{id}", &openapi3.PathItem{Get: get, Delete: del})

	for _, verb := range []string{"resolve", "reject"} {
		op := operation("reports", verb+"Report", fmt.Sprintf("%s a report", capitalize(verb)), ref("ActionResult"))
		op.Parameters = idParam("Report ID")
		op.RequestBody = jsonBody("Optional resolution note", object(openapi3.Schemas{"note": str()}))
		doc.Paths.Set("/admin/api/reports/{id}/"+verb, &openapi3.PathItem{Post: op})
	}
}

func addUserPaths(doc *openapi3.T) {
	get := operation("users", "getUser", "User with moderation stats and reports", ref("UserDetail"))
	get.Parameters = idParam("User ID")
	doc.Paths.Set("/admin/api/users/{id}", &openapi3.PathItem{Get: get})

	status := operation("users", "setUserStatus", "Set a user's moderation status", ref("ActionResult"))
	status.Parameters = idParam("User ID")
	status.RequestBody = jsonBody("New status and note", object(openapi3.Schemas{
		"status": enum("ACTIVE", "SUSPENDED", "BANNED", "DELETED"),
		"note":   str(),
	}))
	doc.Paths.Set("/admin/api/users/{id}/status", &openapi3.PathItem{Post: status})
}

func addMessagePaths(doc *openapi3.T) {
	chats := operation("messages", "listChats", "List chats, optionally only a user's", array(ref("Chat")))
	chats.Parameters = openapi3.Parameters{
		queryParam("userId", "Only chats this user is a member of.", openapi3.NewStringSchema()),
	}
	doc.Paths.Set("/admin/api/chats", &openapi3.PathItem{Get: chats})

	list := operation("messages", "listChatMessages", "Load the messages of a chat", array(ref("Message")))
	list.Parameters = idParam("Chat ID")
	doc.Paths.Set("/admin/api/chats/{id}/messages", &openapi3.PathItem{Get: list})

	mod := operation("messages", "setMessageModeration", "Hide or unhide a message", ref("ActionResult"))
	mod.Parameters = idParam("Message ID")
	mod.RequestBody = jsonBody("New visibility", object(openapi3.Schemas{
		"status": enum("VISIBLE", "HIDDEN_AUTO", "HIDDEN_ADMIN"),
	}))
	doc.Paths.Set("/admin/api/messages/{id}/moderation", &openapi3.PathItem{Post: mod})

	del := operation("messages", "deleteMessage", "Delete a loaded message", ref("ActionResult"))
	del.Parameters = idParam("Message ID")
	doc.Paths.Set("/admin/api/messages/{id}", &openapi3.PathItem{Delete: del})
}

func addMiscPaths(doc *openapi3.T) {
	doc.Paths.Set("/admin/api/load", &openapi3.PathItem{
		Post: operation("dashboard", "loadData", "Fetch all users and reports", object(openapi3.Schemas{
			"users":   integer(),
			"reports": integer(),
		})),
	})
	doc.Paths.Set("/admin/api/dashboard", &openapi3.PathItem{
		Get: operation("dashboard", "getDashboard", "Dashboard summary", ref("DashboardSummary")),
	})

	audit := operation("audit", "listAuditLogs", "Audit entries of this session, newest first", array(ref("AuditLog")))
	audit.Parameters = openapi3.Parameters{
		queryParam("limit", "Maximum number of entries to return.", &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}),
	}
	doc.Paths.Set("/admin/api/audit-logs", &openapi3.PathItem{Get: audit})

	doc.Paths.Set("/admin/api/actions", &openapi3.PathItem{
		Get: operation("audit", "listActions", "Moderation actions and whether they reach the backend", array(object(openapi3.Schemas{
			"name":        str(),
			"consistency": enum("server-confirmed", "local-only"),
		}))),
	})
}

// ─── Builders ───────────────────────────────────────────────────────────────

// operation builds an operation whose 200 response wraps data in the
// {data, message} envelope.
func operation(tag, id, summary string, data *openapi3.SchemaRef) *openapi3.Operation {
	return &openapi3.Operation{
		Tags:        []string{tag},
		Summary:     summary,
		OperationID: id,
		Responses: newResponses("200", summary, object(openapi3.Schemas{
			"data":    data,
			"message": str(),
		})),
	}
}

// newResponses creates a Responses object with a success response and the
// standard error responses.
func newResponses(statusCode, description string, schema *openapi3.SchemaRef) *openapi3.Responses {
	responses := openapi3.NewResponses()

	successDesc := description
	responses.Set(statusCode, &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &successDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	})

	errorRef := openapi3.NewSchemaRef("#/components/schemas/ErrorResponse", nil)
	for _, e := range []struct{ code, desc string }{
		{"400", "Bad request"},
		{"401", "Unauthorized"},
		{"404", "Not found"},
		{"500", "Internal server error"},
		{"502", "Backend unreachable"},
	} {
		desc := e.desc
		responses.Set(e.code, &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &desc,
				Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
			},
		})
	}

	return responses
}

func addTooManyRequests(op *openapi3.Operation) {
	desc := "Too many login attempts"
	op.Responses.Set("429", &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &desc,
			Content:     openapi3.NewContentWithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/ErrorResponse", nil)),
		},
	})
}

func jsonBody(description string, schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Description: description,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	}
}

func idParam(description string) openapi3.Parameters {
	return openapi3.Parameters{
		&openapi3.ParameterRef{
			Value: openapi3.NewPathParameter("id").
				WithDescription(description).
				WithSchema(openapi3.NewStringSchema()),
		},
	}
}

func queryParam(name, description string, schema *openapi3.Schema) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: openapi3.NewQueryParameter(name).
			WithDescription(description).
			WithSchema(schema),
	}
}

func object(props openapi3.Schemas) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}, Properties: props}}
}

func array(items *openapi3.SchemaRef) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"array"}, Items: items}}
}

func ref(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

func str() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}}
}

func integer() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}}
}

func boolean() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}}
}

func dateTime() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"}}
}

func enum(values ...string) *openapi3.SchemaRef {
	s := &openapi3.Schema{Type: &openapi3.Types{"string"}}
	for _, v := range values {
		s.Enum = append(s.Enum, v)
	}
	return &openapi3.SchemaRef{Value: s}
}

// userRef describes a user reference, which arrives either as a bare ID or
// as an embedded user document.
func userRef() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			OneOf: openapi3.SchemaRefs{str(), ref("User")},
		},
	}
}

// capitalize returns s with its first letter upper-cased.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
