package mq

// 订单事件专用 RabbitMQ 封装：
// - 根据配置初始化连接与生产者通道池
// - 使用异步 Confirm：发布后不阻塞等待 ACK，后台协程统一处理
// - 发布失败只记日志，不影响下单事务的结果

import (
	"fmt"
	"sync"
	"time"

	"github.com/ondrejklvac/eshop/config"
	"github.com/ondrejklvac/eshop/pkg/logger"
	"github.com/streadway/amqp"
)

// ExchangeName 订单事件交换机
const ExchangeName = "eshop.exchange"

// OrderCreatedKey 下单成功事件的路由键
const OrderCreatedKey = "order.created"

type channelWrapper struct {
	ch *amqp.Channel
	// 只读通道 接收发布确认结果
	confirms <-chan amqp.Confirmation
}

// Pool 维护一个连接与一组生产者通道（带异步确认处理）。
type Pool struct {
	conn     *amqp.Connection
	channels chan *channelWrapper
	size     int
	mu       sync.Mutex // 防止Close被并发调用
	closed   bool
}

// Init 创建连接与生产者通道池，所有通道开启 Confirm 模式并启动后台确认处理。
func Init(cfg *config.MQConfig) (*Pool, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/", cfg.User, cfg.Password, cfg.Host, cfg.Port)
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq failed: %w", err)
	}
	size := cfg.ChannelPoolSize
	if size <= 0 {
		size = 4
	}

	p := &Pool{conn: conn, channels: make(chan *channelWrapper, size), size: size}
	for i := 0; i < size; i++ {
		cw, err := p.createChannelWrapper()
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("open channel failed: %w", err)
		}
		p.channels <- cw
	}
	logger.Info("MQ producer channel pool initialized", "size", size)
	return p, nil
}

// createChannelWrapper 创建一个带异步确认处理的生产者通道包装
func (p *Pool) createChannelWrapper() (*channelWrapper, error) {
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("enable confirm failed: %w", err)
	}

	// 带缓冲的确认通道，避免阻塞发布协程
	conf := ch.NotifyPublish(make(chan amqp.Confirmation, 256))
	// 后台异步处理确认结果：仅记录 Nack
	go func(c <-chan amqp.Confirmation) {
		for cf := range c {
			if !cf.Ack {
				logger.Warn("publish not acked", "delivery_tag", cf.DeliveryTag)
			}
		}
	}(conf)
	return &channelWrapper{ch: ch, confirms: conf}, nil
}

// Acquire 获取一个可用生产者通道
func (p *Pool) Acquire() *channelWrapper {
	return <-p.channels
}

// Release 归还生产者通道到池中
func (p *Pool) Release(cw *channelWrapper) {
	if cw == nil || p.closed {
		return
	}
	p.channels <- cw
}

// Close 关闭所有资源
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.channels)
	for cw := range p.channels {
		_ = cw.ch.Close()
	}
	_ = p.conn.Close()
}

// EnsureBaseTopology 仅声明基础交换机，队列由具体消费者声明
func (p *Pool) EnsureBaseTopology() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange failed: %w", err)
	}
	logger.Info("Base MQ exchange ensured")
	return nil
}

// PublishAsync 使用池中通道进行异步发布（不等待确认）
func (p *Pool) PublishAsync(exchange, key string, body []byte) error {
	cw := p.Acquire()
	defer p.Release(cw)
	return cw.ch.Publish(exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
}

// PublishAsyncWithID 发布并携带消息ID，便于下游幂等处理
func (p *Pool) PublishAsyncWithID(exchange, key string, body []byte, messageID string) error {
	cw := p.Acquire()
	defer p.Release(cw)
	return cw.ch.Publish(exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		MessageId:    messageID,
	})
}
