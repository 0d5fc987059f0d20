package apiclient

import (
	"context"
	"fmt"
	"learnfront/models/course"
	"net/http"
)

func (c *Client) ListModules(ctx context.Context, courseID uint) ([]course.Module, error) {
	var out []course.Module
	if err := c.getJSON(ctx, "list modules", authOptional, fmt.Sprintf("/courses/%d/modules/", courseID), &out); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].CourseID == 0 {
			out[i].CourseID = courseID
		}
	}
	return out, nil
}

func (c *Client) CreateModule(ctx context.Context, courseID uint, in course.ModuleInput) (*course.Module, error) {
	var out course.Module
	path := fmt.Sprintf("/courses/%d/modules/", courseID)
	if err := c.sendJSON(ctx, "create module", authRequired, http.MethodPost, path, in, &out); err != nil {
		return nil, err
	}
	if out.CourseID == 0 {
		out.CourseID = courseID
	}
	return &out, nil
}

func (c *Client) UpdateModule(ctx context.Context, courseID, moduleID uint, patch course.ModulePatch) (*course.Module, error) {
	var out course.Module
	path := fmt.Sprintf("/courses/%d/modules/%d/", courseID, moduleID)
	if err := c.sendJSON(ctx, "update module", authRequired, http.MethodPatch, path, patch, &out); err != nil {
		return nil, err
	}
	if out.CourseID == 0 {
		out.CourseID = courseID
	}
	return &out, nil
}

func (c *Client) DeleteModule(ctx context.Context, courseID, moduleID uint) error {
	req, err := c.newRequest(ctx, "delete module", authRequired)
	if err != nil {
		return err
	}
	return c.send("delete module", req, http.MethodDelete, fmt.Sprintf("/courses/%d/modules/%d/", courseID, moduleID), nil)
}
