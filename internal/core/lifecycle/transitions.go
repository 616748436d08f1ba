package lifecycle

import (
	"pitapat/pkg/constants"
)

// Event 状态流转事件
type Event string

const (
	EventBuildRequested    Event = "build_requested"
	EventBuildTriggerFail  Event = "build_trigger_failed"
	EventBuildSucceeded    Event = "build_succeeded"
	EventBuildFailed       Event = "build_failed"
	EventDeployRequested   Event = "deploy_requested"
	EventDeployStartFailed Event = "deploy_start_failed"
	EventRolloutHealthy    Event = "rollout_healthy"
	EventRolloutFailed     Event = "rollout_failed"

	// 以下只写入项目日志, 不参与流转
	EventProjectCreated Event = "project_created"
	EventProjectDeleted Event = "project_deleted"
)

// 状态流转来源, 使用位运算
const (
	SourceUser    int8 = 1 << 0 // 用户请求
	SourceWebhook int8 = 1 << 1 // 回调或轮询
	SourceInside  int8 = 1 << 2 // 内部补偿
)

type StateTransition struct {
	Event       Event
	From        []constants.ProjectStatus
	To          constants.ProjectStatus
	AllowSource int8
}

var (
	// 可以发起构建的状态
	buildableStates = []constants.ProjectStatus{
		constants.ProjectStatusCreated,
		constants.ProjectStatusBuildFailed,
		constants.ProjectStatusBuildSucceeded,
		constants.ProjectStatusDeployFailed,
		constants.ProjectStatusDeploySucceeded,
	}
	// 可以发起部署的状态
	deployableStates = []constants.ProjectStatus{
		constants.ProjectStatusBuildSucceeded,
		constants.ProjectStatusDeployFailed,
		constants.ProjectStatusDeploySucceeded,
	}
	// 构建成功回调也可能由 GitHub push 直接触发, 部署进行中以外都接受
	buildEventStates = []constants.ProjectStatus{
		constants.ProjectStatusCreated,
		constants.ProjectStatusBuilding,
		constants.ProjectStatusBuildSucceeded,
		constants.ProjectStatusDeploySucceeded,
		constants.ProjectStatusBuildFailed,
		constants.ProjectStatusDeployFailed,
	}
	// 失败回调只结束进行中的构建
	buildingStates  = []constants.ProjectStatus{constants.ProjectStatusBuilding}
	deployingStates = []constants.ProjectStatus{constants.ProjectStatusDeploying}
)

var transitions = map[Event]StateTransition{}

func init() {
	for _, t := range []StateTransition{
		{Event: EventBuildRequested, From: buildableStates, To: constants.ProjectStatusBuilding, AllowSource: SourceUser},
		{Event: EventBuildTriggerFail, From: buildableStates, To: constants.ProjectStatusBuildFailed, AllowSource: SourceInside},
		{Event: EventBuildSucceeded, From: buildEventStates, To: constants.ProjectStatusBuildSucceeded, AllowSource: SourceWebhook},
		{Event: EventBuildFailed, From: buildingStates, To: constants.ProjectStatusBuildFailed, AllowSource: SourceWebhook},
		{Event: EventDeployRequested, From: deployableStates, To: constants.ProjectStatusDeploying, AllowSource: SourceUser},
		{Event: EventDeployStartFailed, From: deployableStates, To: constants.ProjectStatusDeployFailed, AllowSource: SourceInside},
		{Event: EventRolloutHealthy, From: deployingStates, To: constants.ProjectStatusDeploySucceeded, AllowSource: SourceWebhook},
		{Event: EventRolloutFailed, From: deployingStates, To: constants.ProjectStatusDeployFailed, AllowSource: SourceWebhook},
	} {
		transitions[t.Event] = t
	}
}

// canTransition 检查事件在当前状态和来源下是否允许
func canTransition(event Event, from constants.ProjectStatus, source int8) (StateTransition, bool) {
	t, ok := transitions[event]
	if !ok || t.AllowSource&source == 0 {
		return StateTransition{}, false
	}
	for _, s := range t.From {
		if s == from {
			return t, true
		}
	}
	return StateTransition{}, false
}
