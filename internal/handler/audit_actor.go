package handler

import (
	"net/http"

	"go-todo-api/internal/middleware"
	"go-todo-api/internal/model"
)

func actorFromRequest(r *http.Request) model.AuditActor {
	actor := model.AuditActor{IP: middleware.ClientIP(r)}

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return actor
	}

	actor.UserID = identity.UserID
	actor.Username = identity.Username

	return actor
}

func userActor(r *http.Request, user model.User) model.AuditActor {
	return model.AuditActor{UserID: user.ID, Username: user.Username, IP: middleware.ClientIP(r)}
}
