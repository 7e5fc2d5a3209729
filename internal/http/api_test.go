package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"menstrualcare-api/internal/auth"
	"menstrualcare-api/internal/chatbot"
	"menstrualcare-api/internal/domain"
	"menstrualcare-api/internal/realtime"
	"menstrualcare-api/internal/repository/sqlite"
	"menstrualcare-api/internal/service"
)

type testApp struct {
	router *gin.Engine
	hub    *realtime.Hub
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := sqlite.NewUserRepository(db)
	chats := sqlite.NewChatRepository(db)
	sessions := sqlite.NewChatbotRepository(db)
	require.NoError(t, sqlite.InitAll(context.Background(), users, chats, sessions))

	tokens, err := auth.NewTokenManager("api-test-secret", time.Hour)
	require.NoError(t, err)

	hub := realtime.NewHub(16, logger)
	t.Cleanup(hub.Close)
	chatSvc := service.NewChatService(chats, hub, logger)

	handler := NewHandler(Deps{
		Users:       service.NewUserService(users, auth.NewHasher(4)),
		Chats:       chatSvc,
		Chatbot:     service.NewChatbotService(sessions, chatbot.NewMatcher(chatbot.DefaultTopics)),
		Transcripts: service.NewTranscriptService(chatSvc, nil, service.TranscriptOptions{}),
		Tokens:      tokens,
		Gateway:     realtime.NewGateway(hub, tokens, "http://localhost:3000", logger),
		Logger:      logger,
		CORSOrigin:  "http://localhost:3000",
	})
	router := gin.New()
	handler.RegisterRoutes(router)

	return &testApp{router: router, hub: hub}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(auth.HeaderToken, token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// register signs a user up and returns its token and id.
func (a *testApp) register(t *testing.T, name string) (string, string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     name,
		"email":    strings.ToLower(name) + "@example.com",
		"password": "pw123456",
		"age":      30,
		"weight":   60.5,
		"height":   170,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := decode[map[string]string](t, rec)["token"]
	require.NotEmpty(t, token)

	me := a.do(t, http.MethodGet, "/api/auth", token, nil)
	require.Equal(t, http.StatusOK, me.Code)
	user := decode[domain.User](t, me)
	return token, user.ID
}

func messageOf(rec *httptest.ResponseRecorder) string {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return body.Message
}

func TestAPI_ConversationFlow(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	aliceToken, aliceID := app.register(t, "Alice")
	_, bobID := app.register(t, "Bob")

	// Given a conversation between alice and bob
	rec := app.do(t, http.MethodPost, "/api/chat", aliceToken, gin.H{"participants": []string{bobID}})
	req.Equal(http.StatusOK, rec.Code, rec.Body.String())
	chat := decode[domain.Conversation](t, rec)
	req.ElementsMatch([]string{aliceID, bobID}, chat.ParticipantIDs())
	req.False(chat.IsGroup)

	// When alice posts
	rec = app.do(t, http.MethodPost, "/api/chat/"+chat.ID+"/messages", aliceToken, gin.H{"content": "hi"})
	req.Equal(http.StatusOK, rec.Code, rec.Body.String())
	msg := decode[domain.Message](t, rec)
	req.Equal("hi", msg.Content)
	req.Equal(domain.Sender{ID: aliceID, Name: "Alice"}, msg.Sender)

	// Then the log and the listing reflect it
	rec = app.do(t, http.MethodGet, "/api/chat/"+chat.ID+"/messages", aliceToken, nil)
	req.Equal(http.StatusOK, rec.Code)
	msgs := decode[[]domain.Message](t, rec)
	req.Len(msgs, 1)
	req.Equal(msg.ID, msgs[0].ID)

	for _, path := range []string{"/api/chat", "/api/chat/all"} {
		rec = app.do(t, http.MethodGet, path, aliceToken, nil)
		req.Equal(http.StatusOK, rec.Code)
		list := decode[[]domain.Conversation](t, rec)
		req.Len(list, 1)
		req.True(list[0].LastActivity.Equal(msg.Timestamp))
	}
}

func TestAPI_NonParticipantIsForbidden(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	aliceToken, _ := app.register(t, "Alice")
	_, bobID := app.register(t, "Bob")
	carolToken, _ := app.register(t, "Carol")

	rec := app.do(t, http.MethodPost, "/api/chat", aliceToken, gin.H{"participants": []string{bobID}})
	req.Equal(http.StatusOK, rec.Code)
	chat := decode[domain.Conversation](t, rec)

	rec = app.do(t, http.MethodPost, "/api/chat/"+chat.ID+"/messages", carolToken, gin.H{"content": "x"})
	req.Equal(http.StatusForbidden, rec.Code)
	req.Equal("Not authorized", messageOf(rec))

	rec = app.do(t, http.MethodGet, "/api/chat/"+chat.ID+"/messages", carolToken, nil)
	req.Equal(http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/chat/"+chat.ID+"/messages", aliceToken, nil)
	req.Equal(http.StatusOK, rec.Code)
	req.Empty(decode[[]domain.Message](t, rec), "rejected post left no trace")

	rec = app.do(t, http.MethodPost, "/api/chat/does-not-exist/messages", aliceToken, gin.H{"content": "x"})
	req.Equal(http.StatusNotFound, rec.Code)
	req.Equal("Chat not found", messageOf(rec))
}

func TestAPI_Validation(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	aliceToken, _ := app.register(t, "Alice")

	rec := app.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"email": "x@example.com"})
	req.Equal(http.StatusBadRequest, rec.Code)
	req.Equal("All fields are required", messageOf(rec))

	rec = app.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Alice", "email": "alice@example.com", "password": "pw", "age": 1, "weight": 1, "height": 1,
	})
	req.Equal(http.StatusBadRequest, rec.Code)
	req.Equal("User already exists", messageOf(rec))

	rec = app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "nope"})
	req.Equal(http.StatusBadRequest, rec.Code)
	req.Equal("Invalid credentials", messageOf(rec))

	rec = app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "pw123456"})
	req.Equal(http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/chat", aliceToken, "{not json")
	req.Equal(http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/chat", aliceToken, gin.H{"participants": []string{"ghost"}})
	req.Equal(http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/chat", aliceToken, gin.H{"participants": []string{}, "isGroupChat": true, "groupName": "solo"})
	req.Equal(http.StatusOK, rec.Code)
	chat := decode[domain.Conversation](t, rec)
	req.Equal("solo", chat.GroupName)

	rec = app.do(t, http.MethodPost, "/api/chat/"+chat.ID+"/messages", aliceToken, gin.H{"content": ""})
	req.Equal(http.StatusBadRequest, rec.Code)
}

func TestAPI_RequiresToken(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)

	for _, path := range []string{"/api/auth", "/api/chat/all", "/api/profile", "/api/chatbot"} {
		rec := app.do(t, http.MethodGet, path, "", nil)
		req.Equal(http.StatusUnauthorized, rec.Code, path)
	}

	rec := app.do(t, http.MethodGet, "/api/chat/all", "forged.token.value", nil)
	req.Equal(http.StatusUnauthorized, rec.Code)
	req.Equal("Token is not valid", messageOf(rec))

	rec = app.do(t, http.MethodGet, "/healthz", "", nil)
	req.Equal(http.StatusOK, rec.Code)
}

func TestAPI_Profile(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	token, id := app.register(t, "Alice")

	rec := app.do(t, http.MethodPut, "/api/profile", token, gin.H{"name": "Alicia", "weight": 58})
	req.Equal(http.StatusOK, rec.Code, rec.Body.String())
	user := decode[domain.User](t, rec)
	req.Equal(id, user.ID)
	req.Equal("Alicia", user.Name)
	req.Equal(58.0, user.Weight)
	req.Equal(30, user.Age)
	req.NotContains(rec.Body.String(), "pw123456")

	rec = app.do(t, http.MethodGet, "/api/profile", token, nil)
	req.Equal(http.StatusOK, rec.Code)
	req.Equal("Alicia", decode[domain.User](t, rec).Name)

	rec = app.do(t, http.MethodPut, "/api/profile/password", token, gin.H{"currentPassword": "bad", "newPassword": "next-pass"})
	req.Equal(http.StatusBadRequest, rec.Code)
	req.Equal("Wrong password", messageOf(rec))

	rec = app.do(t, http.MethodPut, "/api/profile/password", token, gin.H{"currentPassword": "pw123456", "newPassword": "next-pass"})
	req.Equal(http.StatusOK, rec.Code)
	req.Equal("Password changed", messageOf(rec))

	rec = app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "next-pass"})
	req.Equal(http.StatusOK, rec.Code)
}

func TestAPI_Chatbot(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	token, _ := app.register(t, "Alice")

	rec := app.do(t, http.MethodGet, "/api/chatbot", token, nil)
	req.Equal(http.StatusOK, rec.Code)
	req.JSONEq(`{"messages":[]}`, rec.Body.String())

	rec = app.do(t, http.MethodPost, "/api/chatbot", token, gin.H{"message": ""})
	req.Equal(http.StatusBadRequest, rec.Code)
	req.Equal("Message is required", messageOf(rec))

	rec = app.do(t, http.MethodPost, "/api/chatbot", token, gin.H{"message": "Tell me about PMS"})
	req.Equal(http.StatusOK, rec.Code)
	var out struct {
		Response string                  `json:"response"`
		Messages []domain.ChatbotMessage `json:"messages"`
	}
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	req.NotEqual(chatbot.Fallback, out.Response)
	req.Len(out.Messages, 2)
}

func TestAPI_TranscriptDisabled(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	token, _ := app.register(t, "Alice")

	rec := app.do(t, http.MethodPost, "/api/chat", token, gin.H{"participants": []string{}})
	req.Equal(http.StatusOK, rec.Code)
	chat := decode[domain.Conversation](t, rec)

	rec = app.do(t, http.MethodPost, "/api/chat/"+chat.ID+"/transcript", token, nil)
	req.Equal(http.StatusServiceUnavailable, rec.Code)
}

func TestAPI_CORSPreflight(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodOptions, "/api/chat", "", nil)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestAPI_PostedMessageIsPushedToRoom(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	aliceToken, _ := app.register(t, "Alice")
	bobToken, bobID := app.register(t, "Bob")

	rec := app.do(t, http.MethodPost, "/api/chat", aliceToken, gin.H{"participants": []string{bobID}})
	req.Equal(http.StatusOK, rec.Code)
	chat := decode[domain.Conversation](t, rec)

	srv := httptest.NewServer(app.router)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + bobToken
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	req.NoError(err)
	defer conn.Close()

	req.NoError(conn.WriteJSON(gin.H{"event": realtime.EventJoinChat, "data": chat.ID}))
	req.Eventually(func() bool { return app.hub.RoomSize(chat.ID) == 1 }, time.Second, 10*time.Millisecond)

	rec = app.do(t, http.MethodPost, "/api/chat/"+chat.ID+"/messages", aliceToken, gin.H{"content": "are you there?"})
	req.Equal(http.StatusOK, rec.Code)

	req.NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var frame struct {
		Event string         `json:"event"`
		Data  domain.Message `json:"data"`
	}
	req.NoError(conn.ReadJSON(&frame))
	req.Equal(service.EventNewMessage, frame.Event)
	req.Equal("are you there?", frame.Data.Content)
	req.Equal("Alice", frame.Data.Sender.Name)
}
