package relation

import (
	"context"
	"time"

	"harmony_server/internal/dao/mysql/repository"
	"harmony_server/internal/dto/respond"
	"harmony_server/internal/infrastructure/mq"
	"harmony_server/internal/model"
	"harmony_server/internal/service/notify"
	"harmony_server/pkg/enum/request"
	"harmony_server/pkg/errorx"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateTeamRequest 邀请 receiverEmail 加入 teamUid 对应的团队，返回申请 uid
// 发起方必须是团队所有者或成员；接收方已是成员（或所有者）返回 AlreadyMember，
// 已有待处理邀请返回 AlreadyInvited
func (s *Service) CreateTeamRequest(ctx context.Context, senderEmail, receiverEmail, teamUid string) (string, error) {
	repos := s.repos.WithContext(ctx)

	sender, err := findActor(repos, senderEmail)
	if err != nil {
		return "", err
	}
	receiver, err := findTarget(repos, receiverEmail)
	if err != nil {
		return "", err
	}
	team, err := repos.Team.FindByUid(teamUid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return "", errorx.Wrap(err, errorx.CodeNotFound, "Team not found")
		}
		return "", err
	}
	if team.OwnerId != sender.ID {
		isMember, err := repos.TeamLink.Exists(team.ID, sender.ID)
		if err != nil {
			return "", err
		}
		if !isMember {
			return "", errorx.New(errorx.CodeNotFound, "Team not found")
		}
	}

	if team.OwnerId == receiver.ID {
		return "", s.conflict(errorx.ErrAlreadyMember)
	}
	isMember, err := repos.TeamLink.Exists(team.ID, receiver.ID)
	if err != nil {
		return "", err
	}
	if isMember {
		return "", s.conflict(errorx.ErrAlreadyMember)
	}

	pendingKey := model.TeamPendingKey(receiver.ID, team.ID)
	invited, err := repos.Request.HasPending(pendingKey)
	if err != nil {
		return "", err
	}
	if invited {
		return "", s.conflict(errorx.ErrAlreadyInvited)
	}

	req := &model.Request{
		Uid:        uuid.NewString(),
		Kind:       request.KindTeam,
		SenderId:   sender.ID,
		ReceiverId: receiver.ID,
		TeamId:     team.ID,
		Status:     request.StatusPending,
		PendingKey: &pendingKey,
	}
	if err := req.SetTeamPayload(model.TeamPayload{TeamName: team.Name, TeamUID: team.Uid}); err != nil {
		return "", errorx.Wrap(err, errorx.CodeServerBusy, "encode team payload")
	}
	if err := repos.Request.Create(req); err != nil {
		// 并发创建时检查都通过，由唯一索引决出唯一的成功者
		if errorx.HasCode(err, errorx.CodeDuplicate) {
			return "", s.conflict(errorx.ErrAlreadyInvited)
		}
		return "", err
	}

	zap.L().Info("team request created",
		zap.String("uid", req.Uid), zap.String("team", team.Uid),
		zap.Uint("sender", sender.ID), zap.Uint("receiver", receiver.ID))

	s.metrics.RequestCreated(string(request.KindTeam))
	s.invalidate(incomingKey(request.KindTeam, receiver.ID))
	s.notifier.Notify(receiver.Email, notify.EventNewTeamRequest, notify.TeamPayload{Team: team.Name})
	s.publish(mq.RelationEvent{
		Type:       mq.EventRequestCreated,
		RequestUid: req.Uid,
		Kind:       string(req.Kind),
		Status:     string(req.Status),
		SenderId:   sender.ID,
		ReceiverId: receiver.ID,
		TeamUid:    team.Uid,
		At:         req.CreatedAt,
	})
	return req.Uid, nil
}

// CreateFriendRequest 向 targetEmail 发起好友申请，返回申请 uid
// 已是好友返回 AlreadyFriends；任一方向已有待处理申请返回 AlreadyPending
func (s *Service) CreateFriendRequest(ctx context.Context, senderEmail, targetEmail string) (string, error) {
	repos := s.repos.WithContext(ctx)

	sender, err := findActor(repos, senderEmail)
	if err != nil {
		return "", err
	}
	target, err := findTarget(repos, targetEmail)
	if err != nil {
		return "", err
	}
	if sender.ID == target.ID {
		return "", errorx.New(errorx.CodeInvalidParam, "Cannot send a friend request to yourself")
	}

	friends, err := repos.UserLink.Exists(sender.ID, target.ID)
	if err != nil {
		return "", err
	}
	if friends {
		return "", s.conflict(errorx.ErrAlreadyFriends)
	}

	pendingKey := model.FriendPendingKey(sender.ID, target.ID)
	pending, err := repos.Request.HasPending(pendingKey)
	if err != nil {
		return "", err
	}
	if pending {
		return "", s.conflict(errorx.ErrAlreadyPending)
	}

	req := &model.Request{
		Uid:        uuid.NewString(),
		Kind:       request.KindFriend,
		SenderId:   sender.ID,
		ReceiverId: target.ID,
		Status:     request.StatusPending,
		PendingKey: &pendingKey,
	}
	if err := repos.Request.Create(req); err != nil {
		if errorx.HasCode(err, errorx.CodeDuplicate) {
			return "", s.conflict(errorx.ErrAlreadyPending)
		}
		return "", err
	}

	zap.L().Info("friend request created",
		zap.String("uid", req.Uid), zap.Uint("sender", sender.ID), zap.Uint("receiver", target.ID))

	s.metrics.RequestCreated(string(request.KindFriend))
	s.invalidate(incomingKey(request.KindFriend, target.ID))
	s.notifier.Notify(target.Email, notify.EventNewFriendRequest, notify.UserPayload{Username: displayName(sender)})
	s.publish(mq.RelationEvent{
		Type:       mq.EventRequestCreated,
		RequestUid: req.Uid,
		Kind:       string(req.Kind),
		Status:     string(req.Status),
		SenderId:   sender.ID,
		ReceiverId: target.ID,
		At:         req.CreatedAt,
	})
	return req.Uid, nil
}

// ResolveRequest 接受或拒绝一条待处理申请
// 申请不存在、已处理或调用方不是接收方时返回 NotFound。
// 接受时建立关系与更新申请在同一事务中完成，建立关系失败则申请保持 pending。
func (s *Service) ResolveRequest(ctx context.Context, resolverEmail, uid string, accepted bool) error {
	var (
		req      *model.Request
		resolver *model.UserInfo
		status   = request.StatusFor(accepted)
		now      = s.now()
	)

	err := s.repos.WithContext(ctx).Transaction(func(tx *repository.Repositories) error {
		var err error
		if resolver, err = findActor(tx, resolverEmail); err != nil {
			return err
		}
		if req, err = tx.Request.FindPendingByUid(uid); err != nil {
			if errorx.IsNotFound(err) {
				return errorx.Wrap(err, errorx.CodeNotFound, errorx.ErrRequestMissing.Msg)
			}
			return err
		}
		if req.ReceiverId != resolver.ID {
			return errorx.ErrRequestMissing
		}

		// 先抢占申请，并发处理时后到者在这里得到 0 行
		claimed, err := tx.Request.Claim(req.ID, status, now)
		if err != nil {
			return err
		}
		if !claimed {
			return errorx.ErrRequestMissing
		}
		if !accepted {
			return nil
		}

		switch req.Kind {
		case request.KindTeam:
			err = tx.TeamLink.Create(&model.TeamLink{TeamId: req.TeamId, UserId: req.ReceiverId})
			if errorx.HasCode(err, errorx.CodeDuplicate) {
				return errorx.ErrAlreadyMember
			}
		case request.KindFriend:
			err = tx.UserLink.Create(&model.UserLink{UserId1: req.SenderId, UserId2: req.ReceiverId})
			if errorx.HasCode(err, errorx.CodeDuplicate) {
				return errorx.ErrAlreadyFriends
			}
		default:
			err = errorx.Newf(errorx.CodeServerBusy, "unknown request kind %q", req.Kind)
		}
		return err
	})
	if err != nil {
		if errorx.IsConflict(err) {
			s.conflict(err)
		}
		return err
	}

	zap.L().Info("request resolved",
		zap.String("uid", req.Uid), zap.String("kind", string(req.Kind)), zap.String("status", string(status)))

	s.metrics.RequestResolved(string(req.Kind), string(status))
	s.afterResolve(ctx, req, resolver, status, now)
	return nil
}

// afterResolve 提交后的通知、缓存失效与事件发布
func (s *Service) afterResolve(ctx context.Context, req *model.Request, resolver *model.UserInfo, status request.Status, at time.Time) {
	keys := []string{incomingKey(req.Kind, req.ReceiverId)}
	if req.Kind == request.KindFriend && status == request.StatusAccepted {
		keys = append(keys, friendListKey(req.SenderId), friendListKey(req.ReceiverId))
	}
	s.invalidate(keys...)

	event := mq.RelationEvent{
		Type:       mq.EventRequestResolved,
		RequestUid: req.Uid,
		Kind:       string(req.Kind),
		Status:     string(status),
		SenderId:   req.SenderId,
		ReceiverId: req.ReceiverId,
		At:         at,
	}
	if req.Kind == request.KindTeam {
		event.TeamUid = req.DecodeTeamPayload().TeamUID
	}
	s.publish(event)

	if req.Kind != request.KindFriend {
		return
	}
	sender, err := s.repos.WithContext(ctx).User.FindById(req.SenderId)
	if err != nil {
		zap.L().Warn("load request sender for notification failed", zap.Uint("sender", req.SenderId), zap.Error(err))
		return
	}
	payload := notify.UserPayload{Username: displayName(resolver)}
	if status == request.StatusAccepted {
		s.notifier.Notify(sender.Email, notify.EventAcceptFriendRequest, payload)
		s.notifier.Notify(resolver.Email, notify.EventAcceptFriendRequest, payload)
		return
	}
	s.notifier.Notify(sender.Email, notify.EventRejectFriendRequest, payload)
}

// ListIncoming 接收方的待处理申请，按创建时间升序
func (s *Service) ListIncoming(ctx context.Context, email string, kind request.Kind) ([]respond.IncomingRequestRespond, error) {
	if !kind.Valid() {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "unknown request kind %q", kind)
	}
	repos := s.repos.WithContext(ctx)
	user, err := findActor(repos, email)
	if err != nil {
		return nil, err
	}

	key := incomingKey(kind, user.ID)
	var cached []respond.IncomingRequestRespond
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}
	gen := s.generation(key)

	rows, err := repos.Request.ListIncoming(user.ID, kind)
	if err != nil {
		return nil, err
	}
	list := make([]respond.IncomingRequestRespond, 0, len(rows))
	for _, row := range rows {
		item := respond.IncomingRequestRespond{
			Uid:            row.Uid,
			Kind:           string(row.Kind),
			SenderEmail:    row.SenderEmail,
			SenderUsername: row.SenderUsername,
			CreatedAt:      row.CreatedAt.Format(time.RFC3339),
		}
		if row.Kind == request.KindTeam {
			p := (&model.Request{Kind: row.Kind, Data: row.Data}).DecodeTeamPayload()
			item.TeamName, item.TeamUid = p.TeamName, p.TeamUID
		}
		list = append(list, item)
	}

	s.cacheSet(key, list, gen)
	return list, nil
}
