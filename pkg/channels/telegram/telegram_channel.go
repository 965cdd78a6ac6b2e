package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"spring/pkg/api"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramConfig encapsulates the credentials required to authenticate with
// the Telegram Bot API.
type TelegramConfig struct {
	Token string `json:"token"` // The secret BOT API string provided by @BotFather

	// NotifyChatID is the chat that receives lifecycle notices such as
	// "(awake)". Zero disables notices.
	NotifyChatID int64 `json:"notify_chat_id"`
}

// TelegramChannel is the production implementation of api.Channel for the
// Telegram platform. It handles text, photo and voice reception over long
// polling and chunked message delivery.
type TelegramChannel struct {
	config       TelegramConfig
	bot          *tgbotapi.BotAPI
	messageLimit int
	httpClient   *http.Client       // Client for downloading remote media from Telegram
	stopCtx      context.Context    // Context used to abort the long-polling loop
	stopCancel   context.CancelFunc
}

func NewTelegramChannel(cfg TelegramConfig, msgLimit int, downloadTimeoutMs int) (api.Channel, error) {
	ctx, cancel := context.WithCancel(context.Background())

	// Dedicated HTTP client tied to stopCtx so active long-polling requests
	// are aborted when Stop() is called, preventing a 409 Conflict on restart.
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	botHTTPClient := &http.Client{
		Timeout: 90 * time.Second,
		Transport: &http.Transport{
			DialContext: func(dialCtx context.Context, network, addr string) (net.Conn, error) {
				mergedCtx, mergedCancel := context.WithCancel(dialCtx)
				go func() {
					select {
					case <-ctx.Done():
						mergedCancel()
					case <-mergedCtx.Done():
					}
				}()
				return dialer.DialContext(mergedCtx, network, addr)
			},
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, botHTTPClient)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram bot authorized", "username", bot.Self.UserName)

	return &TelegramChannel{
		config:       cfg,
		bot:          bot,
		messageLimit: msgLimit,
		httpClient: &http.Client{
			Timeout: time.Duration(downloadTimeoutMs) * time.Millisecond,
		},
		stopCtx:    ctx,
		stopCancel: cancel,
	}, nil
}

// ID returns the unique platform identifier "telegram".
func (t *TelegramChannel) ID() string {
	return "telegram"
}

// Start initiates the long-polling update loop in a background goroutine,
// mapping Telegram updates into UnifiedMessages.
func (t *TelegramChannel) Start(ctx api.ChannelContext) error {
	offset := 0

	go func() {
		for {
			select {
			case <-t.stopCtx.Done():
				return
			default:
			}

			reqConfig := tgbotapi.NewUpdate(offset)
			reqConfig.Timeout = 60

			updates, err := t.bot.GetUpdates(reqConfig)
			if err != nil {
				select {
				case <-t.stopCtx.Done():
					return
				default:
					slog.Debug("Failed to get telegram updates", "error", err)
					time.Sleep(3 * time.Second)
					continue
				}
			}

			for _, update := range updates {
				if update.UpdateID < offset {
					continue
				}
				offset = update.UpdateID + 1

				if update.Message == nil {
					continue
				}

				t.dispatch(ctx, update.Message)
			}
		}
	}()

	return nil
}

// dispatch converts one Telegram message into a UnifiedMessage. Media is
// downloaded asynchronously so the update loop never blocks on the network.
func (t *TelegramChannel) dispatch(ctx api.ChannelContext, m *tgbotapi.Message) {
	session := api.SessionContext{
		ChannelID: "telegram",
		UserID:    strconv.FormatInt(m.From.ID, 10),
		ChatID:    strconv.FormatInt(m.Chat.ID, 10),
		Username:  m.From.UserName,
	}

	content := m.Text
	if content == "" {
		content = m.Caption
	}

	var photoID, voiceID string
	if len(m.Photo) > 0 {
		photoID = m.Photo[len(m.Photo)-1].FileID
	}
	if m.Voice != nil {
		voiceID = m.Voice.FileID
	}

	if photoID == "" && voiceID == "" {
		ctx.OnMessage(t.ID(), &api.UnifiedMessage{Session: session, Content: content})
		return
	}

	go func() {
		msg := &api.UnifiedMessage{Session: session, Content: content}

		if photoID != "" {
			if file, err := t.downloadFile(photoID, "image/jpeg"); err == nil {
				msg.Photo = file
			} else {
				slog.Error("Photo download failed", "error", err)
			}
		}

		if voiceID != "" {
			if file, err := t.downloadFile(voiceID, "audio/ogg"); err == nil {
				msg.Voice = file
			} else {
				slog.Error("Voice download failed", "error", err)
			}
		}

		if msg.Content == "" && msg.Photo == nil && msg.Voice == nil {
			return
		}
		ctx.OnMessage(t.ID(), msg)
	}()
}

// downloadFile fetches a file from Telegram into memory.
func (t *TelegramChannel) downloadFile(fileID string, fallbackMime string) (*api.FileAttachment, error) {
	fileInfo, err := t.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	// Combine download URL directly from Token to reduce API round trips
	fileURL := fileInfo.Link(t.config.Token)

	resp, err := t.httpClient.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status code %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file data: %w", err)
	}

	return &api.FileAttachment{
		Filename: filepath.Base(fileInfo.FilePath),
		MimeType: fallbackMime,
		Data:     data,
	}, nil
}

func (t *TelegramChannel) Stop() error {
	t.stopCancel()

	// Clear the connection pool; active long-polls die via stopCtx.
	if httpClient, ok := t.bot.Client.(*http.Client); ok && httpClient != nil {
		if transport, ok := httpClient.Transport.(*http.Transport); ok {
			transport.CloseIdleConnections()
		}
	}

	return nil
}

// SendText delivers a text message, splitting it into chunks when it exceeds
// the platform limit.
func (t *TelegramChannel) SendText(session api.SessionContext, text string) error {
	chatID, err := parseChatID(session)
	if err != nil {
		return err
	}

	msgRunes := []rune(text)
	totalLen := len(msgRunes)

	if totalLen <= t.messageLimit {
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := t.bot.Send(msg); err != nil {
			return fmt.Errorf("telegram send failed: %w", err)
		}
		return nil
	}

	for i := 0; i < totalLen; i += t.messageLimit {
		end := i + t.messageLimit
		if end > totalLen {
			end = totalLen
		}
		chunk := string(msgRunes[i:end])
		msg := tgbotapi.NewMessage(chatID, chunk)
		if _, err := t.bot.Send(msg); err != nil {
			return fmt.Errorf("telegram send chunk failed at index %d: %w", i, err)
		}
	}

	return nil
}

// SendFile delivers a document with an optional caption.
func (t *TelegramChannel) SendFile(session api.SessionContext, file api.OutgoingFile) error {
	chatID, err := parseChatID(session)
	if err != nil {
		return err
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  file.Name,
		Bytes: file.Data,
	})
	doc.Caption = file.Caption

	if _, err := t.bot.Send(doc); err != nil {
		return fmt.Errorf("telegram document send failed: %w", err)
	}
	return nil
}

// SendVoice delivers synthesized audio as a voice note.
func (t *TelegramChannel) SendVoice(session api.SessionContext, audio []byte) error {
	chatID, err := parseChatID(session)
	if err != nil {
		return err
	}

	voice := tgbotapi.NewVoice(chatID, tgbotapi.FileBytes{
		Name:  "voice.ogg",
		Bytes: audio,
	})

	if _, err := t.bot.Send(voice); err != nil {
		return fmt.Errorf("telegram voice send failed: %w", err)
	}
	return nil
}

// Announce implements api.Announcer by messaging the configured notify chat.
func (t *TelegramChannel) Announce(text string) error {
	if t.config.NotifyChatID == 0 {
		return nil
	}
	if _, err := t.bot.Send(tgbotapi.NewMessage(t.config.NotifyChatID, text)); err != nil {
		return fmt.Errorf("telegram announce failed: %w", err)
	}
	return nil
}

// SendSignal implements the api.SignalingChannel interface.
func (t *TelegramChannel) SendSignal(session api.SessionContext, signal string) error {
	if signal != "typing" {
		return nil
	}
	chatID, err := parseChatID(session)
	if err != nil {
		return err
	}
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	_, err = t.bot.Send(action)
	return err
}

func parseChatID(session api.SessionContext) (int64, error) {
	chatID, err := strconv.ParseInt(session.ChatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat id for telegram: %s", session.ChatID)
	}
	return chatID, nil
}
