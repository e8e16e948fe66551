package constants

import "time"

const (
	CHANNEL_SIZE  = 100 // 每个连接的发送缓冲区大小
	REDIS_TIMEOUT = 1   // redis 缓存过期时间 (分钟)

	ROOM_PREFIX = "online:" // 团队聊天室前缀，room = ROOM_PREFIX + team uid

	WS_WRITE_WAIT   = 10 * time.Second        // 单次写超时
	WS_PONG_WAIT    = 60 * time.Second        // 读超时，超过未收到 pong 视为断开
	WS_PING_PERIOD  = (WS_PONG_WAIT * 9) / 10 // ping 周期，需小于 WS_PONG_WAIT
	WS_MAX_MSG_SIZE = 8192                    // 客户端单条消息上限 (字节)
)

// 缓存 key 前缀
const (
	CACHE_INCOMING_REQUESTS = "incoming_requests_" // incoming_requests_<kind>_<user id>
	CACHE_FRIEND_LIST       = "friend_list_"       // friend_list_<user id>
)
