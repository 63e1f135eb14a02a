package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/recruiter-assistant/internal/logger"
	"alfredoptarigan/recruiter-assistant/internal/models"
)

const (
	ReplyWrongFormat     = "📄 Por favor, envía tu CV en formato PDF o Word (.docx). El archivo que enviaste no pudo ser procesado como CV."
	ReplyDownloadFailed  = "❌ Hubo un problema al descargar tu CV. Por favor, intenta enviarlo nuevamente."
	ReplyIntakeFailed    = "❌ No pude procesar tu CV. Por favor, verifica que el archivo no esté dañado e intenta enviarlo nuevamente."
	ReplyStoreDegraded   = "⚠️ Nuestro sistema de registro no está disponible en este momento. Por favor, intenta de nuevo en unos minutos."
	ReplyAgentFailed     = "No pude procesar tu mensaje correctamente. ¿Podrías repetirlo?"
	ReplyTechnicalFailed = "❌ Ocurrió un error técnico. Por favor, intenta de nuevo."
)

type RouteOutcome string

const (
	RouteProcessed RouteOutcome = "processed"
	RouteDuplicate RouteOutcome = "duplicate"
	RouteIgnored   RouteOutcome = "ignored"
)

// ConversationRouter turns one inbound event into exactly one outbound reply.
type ConversationRouter interface {
	Route(ctx context.Context, ev models.InboundEvent) (RouteOutcome, error)
}

type RouterDeps struct {
	Dedup      DeduplicationGuard
	Worker     Worker
	Gateway    WhatsAppGateway
	Downloader MediaDownloader
	Storage    StorageService
	Intake     IntakePipeline
	Registrar  CandidateRegistrar
	Agent      Agent

	HistoryFetchLimit int
	HistoryWindow     int
}

type conversationRouter struct {
	RouterDeps
	log *zap.Logger
}

func NewConversationRouter(deps RouterDeps, log *zap.Logger) ConversationRouter {
	if deps.HistoryFetchLimit <= 0 {
		deps.HistoryFetchLimit = 10
	}
	if deps.HistoryWindow <= 0 {
		deps.HistoryWindow = DefaultHistoryWindow
	}
	return &conversationRouter{RouterDeps: deps, log: logger.OrNop(log).Named("router")}
}

// Route implements ConversationRouter. Duplicates, group chats and our own messages are
// dropped without a reply. Everything else runs on the chat's worker shard; the returned
// error is only set when the event could not be scheduled.
func (r *conversationRouter) Route(ctx context.Context, ev models.InboundEvent) (RouteOutcome, error) {
	log := r.log.With(logger.ChatFields(ev.ChatID, ev.MessageID)...)

	fp := ev.Fingerprint()
	if r.Dedup.SeenOrRecord(fp) {
		log.Info("event dropped", zap.Error(models.ErrDuplicateEvent))
		return RouteDuplicate, nil
	}
	if ev.IsGroup {
		log.Debug("group message", zap.Error(models.ErrIgnoredEvent))
		return RouteIgnored, nil
	}
	if ev.FromMe {
		log.Debug("own message", zap.Error(models.ErrIgnoredEvent))
		return RouteIgnored, nil
	}

	err := r.Worker.Do(ctx, ev.ChatID, func(ctx context.Context) error {
		r.process(ctx, ev, log)
		return nil
	})
	if err != nil {
		// Not processed: a gateway redelivery must get through.
		r.Dedup.Forget(fp)
		return RouteProcessed, fmt.Errorf("failed to schedule message: %w", err)
	}
	return RouteProcessed, nil
}

func (r *conversationRouter) process(ctx context.Context, ev models.InboundEvent, log *zap.Logger) {
	if err := r.Gateway.StartTyping(ctx, ev.ChatID); err != nil {
		log.Warn("failed to start typing", zap.Error(err))
	}
	defer func() {
		if err := r.Gateway.StopTyping(context.WithoutCancel(ctx), ev.ChatID); err != nil {
			log.Warn("failed to stop typing", zap.Error(err))
		}
	}()

	reply := r.reply(ctx, ev, log)

	if err := r.Gateway.SendText(ctx, ev.ChatID, reply); err != nil {
		log.Error("failed to send reply", zap.Error(err))
		return
	}
	log.Info("reply sent", zap.String("reply", logger.TruncateForLog(reply, 120)))
}

func (r *conversationRouter) reply(ctx context.Context, ev models.InboundEvent, log *zap.Logger) (reply string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("message processing panicked", zap.Any("panic", rec))
			reply = ReplyTechnicalFailed
		}
	}()

	if ev.Attachment != nil {
		return r.replyToAttachment(ctx, ev, log)
	}
	return r.replyToText(ctx, ev, log)
}

func (r *conversationRouter) replyToAttachment(ctx context.Context, ev models.InboundEvent, log *zap.Logger) string {
	att := *ev.Attachment
	log = log.With(zap.String("media_url", att.URL), zap.String("mimetype", att.MimeType), zap.String("filename", att.Filename))

	if !IsProcessableDocument(att.URL, att.MimeType, att.Filename) {
		log.Info("attachment is not a document")
		return ReplyWrongFormat
	}

	phone := ev.Phone()
	path, err := r.Downloader.Download(ctx, att, phone)
	if err != nil {
		log.Warn("download failed", zap.Error(err))
		return ReplyDownloadFailed
	}
	defer func() {
		if err := r.Storage.DeleteFile(path); err != nil {
			log.Warn("failed to remove temp file", zap.String("path", path), zap.Error(err))
		}
	}()

	env := r.Intake.Process(ctx, IntakeRequest{FilePath: path, Phone: phone})
	if !env.OK() {
		log.Warn("intake failed", zap.String("kind", env.ErrorKind), zap.String("message", env.Message))
		if env.ErrorKind == models.IntakeErrorUnsupportedFormat {
			return ReplyWrongFormat
		}
		return ReplyIntakeFailed
	}

	res, err := r.Registrar.Register(ctx, phone, env.CVInfo)
	if err != nil {
		log.Error("candidate registration failed", zap.Error(err))
		if errors.Is(err, models.ErrStoreUnavailable) {
			return ReplyStoreDegraded
		}
		return ReplyTechnicalFailed
	}

	log.Info("cv registered", zap.String("candidate_id", res.CandidateID), zap.String("action", string(res.Action)))
	return ConfirmationMessage(res)
}

func (r *conversationRouter) replyToText(ctx context.Context, ev models.InboundEvent, log *zap.Logger) string {
	messages, err := r.Gateway.GetHistory(ctx, ev.ChatID, r.HistoryFetchLimit)
	if err != nil {
		log.Warn("history unavailable, continuing without it", zap.Error(err))
	}
	history := FormatHistory(messages, ev.MessageID, r.HistoryWindow)

	answer, err := r.Agent.Respond(ctx, AgentRequest{
		Phone:   ev.Phone(),
		Message: ev.Body,
		History: history,
	})
	if err != nil {
		log.Error("agent failed", zap.Error(err))
		return ReplyAgentFailed
	}
	return answer
}
