package feishu

import (
	"context"
	"fmt"
)

// =============================================================================
// 任务服务 — 飞书任务API v2
// 分项询价发给供应商后，给跟单员建跟进任务；回价后标记完成
// =============================================================================

// CreateTask 创建飞书任务，返回任务全局唯一ID（guid）
func (c *Client) CreateTask(ctx context.Context, req CreateTaskReq) (string, error) {
	reqBody := map[string]interface{}{
		"summary": req.Summary,
	}

	if req.Description != "" {
		reqBody["description"] = req.Description
	}

	if len(req.Members) > 0 {
		members := make([]map[string]interface{}, 0, len(req.Members))
		for _, m := range req.Members {
			members = append(members, map[string]interface{}{
				"id":   m.ID,
				"role": m.Role,
			})
		}
		reqBody["members"] = members
	}

	if req.Due != nil {
		reqBody["due"] = map[string]interface{}{
			"time":       req.Due.Time,
			"is_all_day": req.Due.IsAllDay,
		}
	}

	var resp CreateTaskResponse
	err := c.doRequest(ctx, "POST", "/open-apis/task/v2/tasks", reqBody, &resp)
	if err != nil {
		return "", fmt.Errorf("创建飞书任务失败: %w", err)
	}

	return resp.Data.Task.Guid, nil
}

// CompleteTask 将飞书任务标记为已完成
func (c *Client) CompleteTask(ctx context.Context, taskID string) error {
	path := fmt.Sprintf("/open-apis/task/v2/tasks/%s/complete", taskID)

	var resp CompleteTaskResponse
	err := c.doRequest(ctx, "POST", path, map[string]interface{}{}, &resp)
	if err != nil {
		return fmt.Errorf("完成飞书任务失败: %w", err)
	}

	return nil
}
